package main

import (
	"io"
	"math"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ccbhj/pdprune/internal/log"
	"github.com/ccbhj/pdprune/internal/newick"
	"github.com/ccbhj/pdprune/internal/output"
	"github.com/ccbhj/pdprune/internal/prune"
)

const stdStream = "-"

type config struct {
	cutoff       float64
	namesOnly    bool
	header       bool
	output       string
	delimiter    string
	prunedSuffix string
	verbose      bool
}

func (c *config) validate() error {
	if math.IsNaN(c.cutoff) || c.cutoff <= 0 {
		return errors.WithMessagef(prune.ErrInvalidCutoff, "--cutoff %v", c.cutoff)
	}
	if utf8.RuneCountInString(c.delimiter) != 1 {
		return errors.Errorf("--delimiter must be a single character, got %q", c.delimiter)
	}
	return nil
}

func (c *config) writerOptions() []output.Option {
	comma, _ := utf8.DecodeRuneInString(c.delimiter)
	return []output.Option{
		output.WithNamesOnly(c.namesOnly),
		output.WithHeader(c.header),
		output.WithComma(comma),
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config{}
	cmd := &cobra.Command{
		Use:   "pdprune [flags] TREE...",
		Short: "Prune the shortest pendant branches of phylogenetic trees",
		Long: `pdprune removes, one at a time, the leaf with the shortest pendant branch
of each Newick tree until every pendant branch left is longer than the cutoff.
For every removed leaf it prints its name, the branch length removed and the
phylogenetic diversity lost so far. Use - to read a tree from stdin.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.Float64VarP(&cfg.cutoff, "cutoff", "c", 0, "maximum length of a branch to remove")
	flags.BoolVarP(&cfg.namesOnly, "names-only", "n", false, "only print the names of removed leaves")
	flags.BoolVar(&cfg.header, "header", false, "print a header row")
	flags.StringVarP(&cfg.output, "output", "o", stdStream, "file to write to")
	flags.StringVarP(&cfg.delimiter, "delimiter", "d", ",", "field delimiter")
	flags.StringVar(&cfg.prunedSuffix, "pruned-suffix", "",
		"also write each pruned tree next to its input, with this suffix appended")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every removal to stderr")
	_ = cmd.MarkFlagRequired("cutoff")

	return cmd
}

func run(cmd *cobra.Command, cfg *config, args []string) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.verbose {
		log.SetDebug(true)
	}

	out, closeOut, err := openOutput(cfg.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	w := output.NewWriter(out, cfg.writerOptions()...)
	for _, path := range args {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		res, err := pruneFile(cfg, path, cmd.InOrStdin())
		if err != nil {
			return errors.WithMessage(err, path)
		}
		if err := w.Write(res); err != nil {
			return errors.WithMessagef(err, "fail to write result of %s", path)
		}
	}
	return nil
}

func openOutput(path string, std io.Writer) (io.Writer, func(), error) {
	if path == stdStream {
		return std, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to open output")
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.E("fail to close %s: %s", path, err)
		}
	}, nil
}

func pruneFile(cfg *config, path string, stdin io.Reader) (*prune.Result, error) {
	var r io.Reader = stdin
	if path != stdStream {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	tree, err := newick.Parse(r)
	if err != nil {
		return nil, err
	}
	e, err := prune.NewEngine(tree, cfg.cutoff)
	if err != nil {
		return nil, err
	}
	res, err := e.Run()
	if err != nil {
		return nil, err
	}
	if log.IsDebug() {
		log.Debug("%s: removed %d leaves, pd_loss=%v, stopped by %s, digest=%016x, pruned=%016x",
			path, res.Len(), res.PDLoss, res.Stop, res.Digest(), e.Tree().Fingerprint())
	}

	if cfg.prunedSuffix != "" {
		if path == stdStream {
			log.LP("pdprune", "pruned tree from stdin is not written")
			return res, nil
		}
		dst := path + cfg.prunedSuffix
		if err := os.WriteFile(dst, []byte(newick.Format(e.Tree())+"\n"), 0o644); err != nil {
			return nil, errors.Wrapf(err, "fail to write pruned tree to %s", dst)
		}
	}
	return res, nil
}
