package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DebugLogName is the debug log written to the working directory
const DebugLogName = "voicelift-debug.log"

// NewDebugLogger opens (truncating) a log file for processing diagnostics.
// The terminal belongs to the UI, so nothing is written to stdout. Without
// verbose only warnings and errors are recorded. The returned closer must be
// closed when processing ends.
func NewDebugLogger(path string, verbose bool) (*logrus.Logger, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create debug log: %w", err)
	}

	log := newLogger(f)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log, f, nil
}

// Discard returns a logger that drops everything
func Discard() *logrus.Logger {
	log := newLogger(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return log
}
