// Package logger builds the process logging context: a logrus logger that fans
// entries out to a console destination and a rotating file destination, each with
// its own level.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/krobus00/symbol-store/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type options struct {
	console io.Writer
	now     func() time.Time
}

type Option func(*options)

func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds a logger from cfg. The returned closer releases the log file.
func New(cfg config.LogConfig, opts ...Option) (*logrus.Logger, io.Closer, error) {
	o := &options{console: os.Stderr, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	globalLevel, err := parseLevel(cfg.GlobalLevel, logrus.DebugLevel)
	if err != nil {
		return nil, nil, err
	}
	fileLevel, err := parseLevel(cfg.FileLevel, globalLevel)
	if err != nil {
		return nil, nil, err
	}
	consoleLevel, err := parseLevel(cfg.ConsoleLevel, globalLevel)
	if err != nil {
		return nil, nil, err
	}

	folder := strings.TrimSpace(cfg.Folder)
	if folder == "" {
		folder = "logs"
	}
	file := strings.TrimSpace(cfg.File)
	if file == "" {
		file = "app.log"
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log folder: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(folder, file),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.BackupCount,
		LocalTime:  true,
	}

	var fileWriter io.Writer = rotating
	if cfg.UseTimeRotation {
		fileWriter = &dailyRotator{rotator: rotating, now: o.now}
	}

	formatter := newFormatter(cfg.Format)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(formatter)
	logger.SetLevel(globalLevel)
	logger.SetReportCaller(cfg.ShowCaller)
	logger.AddHook(&writerHook{writer: o.console, levels: levelsUpTo(consoleLevel), formatter: formatter})
	logger.AddHook(&writerHook{writer: fileWriter, levels: levelsUpTo(fileLevel), formatter: formatter})

	return logger, rotating, nil
}

// Discard returns a logger that drops everything, for tests and library callers
// that have no logging context.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func parseLevel(raw string, fallback logrus.Level) (logrus.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}

	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return fallback, fmt.Errorf("parse log level %q: %w", raw, err)
	}

	return level, nil
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return &logrus.JSONFormatter{}
	}

	return &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
}

func levelsUpTo(max logrus.Level) []logrus.Level {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, level := range logrus.AllLevels {
		if level <= max {
			levels = append(levels, level)
		}
	}

	return levels
}

type writerHook struct {
	mu        sync.Mutex
	writer    io.Writer
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

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err = h.writer.Write(line)
	return err
}

// dailyRotator rotates the underlying file on the first write of a new local day.
type dailyRotator struct {
	mu      sync.Mutex
	rotator *lumberjack.Logger
	now     func() time.Time
	day     string
}

func (d *dailyRotator) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := d.now().Format(time.DateOnly)
	if d.day != "" && d.day != today {
		if err := d.rotator.Rotate(); err != nil {
			return 0, err
		}
	}
	d.day = today

	return d.rotator.Write(p)
}
