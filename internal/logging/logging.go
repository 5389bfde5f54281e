// Package logging builds the process logger: human readable lines on the
// console and, optionally, a JSON debug log file per run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	// Level is the console level. Empty means info.
	Level string
	// Console receives console lines. Nil means stderr.
	Console io.Writer
	// Dir, when set, receives a debug-level JSON log file for this run.
	Dir string
}

// Logger is a logrus logger plus the file it may own.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New creates the logger. Entries are routed through hooks so the console and
// the file can have different levels and formats.
func New(opts Options) (*Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(level)
	base.AddHook(&writerHook{
		out:    console,
		levels: levelsUpTo(level),
		formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		},
	})

	l := &Logger{Logger: base}
	if opts.Dir == "" {
		return l, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	name := fmt.Sprintf("grove-notion-%s.log", time.Now().Format("2006-01-02_15-04-05.000"))
	f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	if base.GetLevel() < logrus.DebugLevel {
		base.SetLevel(logrus.DebugLevel)
	}
	base.AddHook(&writerHook{
		out:       f,
		levels:    levelsUpTo(logrus.DebugLevel),
		formatter: &logrus.JSONFormatter{},
	})
	return l, nil
}

// FilePath returns the debug log file, or "" when none is written.
func (l *Logger) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close closes the debug log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// writerHook formats entries of the given levels onto out.
type writerHook struct {
	out       io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}

func levelsUpTo(max logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, l := range logrus.AllLevels {
		if l <= max {
			out = append(out, l)
		}
	}
	return out
}
