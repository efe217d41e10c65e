package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the logger for one run. It is constructed explicitly and passed
// down the pipeline; nothing in this repository keeps a package-level logger.
// The console always logs at the configured level. When logDir is non-empty
// every entry down to debug level is additionally written to a timestamped
// file, and the file path is returned.
func New(level, experimentID, logDir string) (*logrus.Logger, string, error) {
	formatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	logger := logrus.New()
	logger.SetFormatter(formatter)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, "", fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)
	logger.SetOutput(os.Stdout)

	if logDir == "" {
		return logger, "", nil
	}

	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", experimentID, time.Now().Format("20060102_150405")))
	f, err := os.Create(logFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log file: %w", err)
	}

	// The logger level must match the most verbose sink, because hooks only
	// see entries the logger itself accepts. The file takes everything as the
	// primary output; the console becomes a hook capped at the configured
	// level.
	logger.SetOutput(f)
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(&writerHook{
		writer:    os.Stdout,
		formatter: formatter,
		levels:    levelsUpTo(parsed),
	})
	return logger, logFile, nil
}

// writerHook copies entries at the listed levels to a second sink.
type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

func levelsUpTo(level logrus.Level) []logrus.Level {
	levels := make([]logrus.Level, 0, int(level)+1)
	for _, l := range logrus.AllLevels {
		if l <= level {
			levels = append(levels, l)
		}
	}
	return levels
}

// Discard returns a logger that swallows everything. Tests use it where a
// component wants a logger but the output is noise.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
