// Package output writes pruning results as delimited rows
package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ccbhj/pdprune/internal/prune"
)

var Header = []string{"name", "branch_length", "pd_loss"}

type (
	options struct {
		namesOnly bool
		header    bool
		comma     rune
	}

	Option func(*options)

	// Writer renders prune.Result, one row per removed leaf
	Writer struct {
		w           *csv.Writer
		opts        options
		wroteHeader bool
	}
)

// WithNamesOnly writes only the name of removed leaves
func WithNamesOnly(on bool) Option {
	return func(o *options) { o.namesOnly = on }
}

// WithHeader writes a header before the first row
func WithHeader(on bool) Option {
	return func(o *options) { o.header = on }
}

func WithComma(c rune) Option {
	return func(o *options) { o.comma = c }
}

func NewWriter(w io.Writer, opts ...Option) *Writer {
	o := options{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}
	cw := csv.NewWriter(w)
	cw.Comma = o.comma
	return &Writer{w: cw, opts: o}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (w *Writer) row(rec prune.Record) []string {
	if w.opts.namesOnly {
		return []string{rec.Name}
	}
	return []string{rec.Name, formatFloat(rec.Length), formatFloat(rec.PDLoss)}
}

func (w *Writer) writeHeader() error {
	if !w.opts.header || w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	if w.opts.namesOnly {
		return w.w.Write(Header[:1])
	}
	return w.w.Write(Header)
}

// Write appends the records of res and flushes
func (w *Writer) Write(res *prune.Result) error {
	if err := w.writeHeader(); err != nil {
		return errors.Wrap(err, "fail to write header")
	}
	for _, rec := range res.Records {
		if err := w.w.Write(w.row(rec)); err != nil {
			return errors.Wrapf(err, "fail to write record of %s", rec.Name)
		}
	}
	w.w.Flush()
	return w.w.Error()
}
