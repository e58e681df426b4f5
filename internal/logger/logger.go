// Package logger wraps zerolog with optional rotating file output.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the active log file inside Config.Path.
const FileName = "zeppplayer.log"

// Logger wraps zerolog for application logging.
type Logger struct {
	zerolog.Logger
	sink *fileSink
}

// Config holds logger configuration.
type Config struct {
	Level      string
	Format     string // "console" or "json"
	Path       string // directory for log files, empty until AttachFile
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Console    io.Writer // defaults to os.Stdout
}

// fileSink is shared by a logger and all of its children. Writes are
// dropped until a rotator is attached.
type fileSink struct {
	cfg Config

	mu      sync.Mutex
	rotator *lumberjack.Logger
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotator == nil {
		return len(p), nil
	}
	return s.rotator.Write(p)
}

func (s *fileSink) attach(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotator != nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	s.rotator = &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName),
		MaxSize:    orDefault(s.cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(s.cfg.MaxBackups, 3),
		MaxAge:     orDefault(s.cfg.MaxAgeDays, 30),
		Compress:   true,
		LocalTime:  true,
	}
	return nil
}

func (s *fileSink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotator == nil {
		return nil
	}
	return s.rotator.Close()
}

// New creates a new logger instance. When cfg.Path is set the log file is
// opened right away; otherwise it can be attached later with AttachFile.
func New(cfg Config) *Logger {
	out := cfg.Console
	if out == nil {
		out = os.Stdout
	}

	var consoleOutput io.Writer = out
	if cfg.Format != "json" {
		consoleOutput = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.Console != nil,
		}
	}

	sink := &fileSink{cfg: cfg}
	logger := zerolog.New(io.MultiWriter(consoleOutput, sink)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	l := &Logger{Logger: logger, sink: sink}
	if cfg.Path != "" {
		if err := sink.attach(cfg.Path); err != nil {
			l.Warn().Err(err).Msg("file logging disabled")
		}
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop(), sink: &fileSink{}}
}

// AttachFile starts writing to the rotating log file in dir. It applies to
// this logger and every logger derived from it. Only the first call has an
// effect.
func (l *Logger) AttachFile(dir string) error {
	return l.sink.attach(dir)
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	return l.sink.close()
}

// WithComponent returns a new logger with component field.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
		sink:   l.sink,
	}
}

// WithInstance returns a new logger stamped with the launch instance id.
func (l *Logger) WithInstance(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("instance", id).Logger(),
		sink:   l.sink,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
