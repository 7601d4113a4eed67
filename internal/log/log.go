package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	logOut io.Writer = os.Stderr
	dbg              = strings.EqualFold(os.Getenv("PDPRUNE_DEBUG"), "true")
	logger zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger = newLogger(logOut)
}

func newLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "15:04:05.000000",
	}
	return zerolog.New(cw).With().Timestamp().Logger()
}

// SetOutput redirect all the log to w
func SetOutput(w io.Writer) {
	logOut = w
	logger = newLogger(w)
}

// SetDebug toggle debug logs and assertions
func SetDebug(on bool) {
	dbg = on
}

// IsDebug report whether the debug toggle is on
func IsDebug() bool {
	return dbg
}

// Debug only print log when debug toggle is on
func Debug(format string, args ...any) {
	if !dbg {
		return
	}
	logger.Debug().Msg(logFormat(format, args...))
}

func logFormat(format string, args ...any) string {
	_, file, lineno, _ := runtime.Caller(2)
	file = path.Base(file)
	s := fmt.Sprintf("%s:%d|"+format, append([]any{file, lineno}, args...)...)
	return s
}

// L print log
func L(format string, args ...any) {
	logger.Info().Msg(logFormat(format, args...))
}

// LP print log with a prefix
func LP(prefix, format string, args ...any) {
	logger.Info().Msg(logFormat("["+prefix+"] "+format, args...))
}

// E print an error log
func E(format string, args ...any) {
	logger.Error().Msg(logFormat(format, args...))
}

// BugOn assert 'exp' to be true, or panic when debug toggle is on
func BugOn(exp bool, format string, args ...any) {
	if dbg && !exp {
		msg := fmt.Sprintf("[BUG] "+format, args...)
		logger.Error().Msg(msg)
		panic(msg)
	}
}
