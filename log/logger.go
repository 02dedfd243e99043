package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes leveled lines to the terminal, a rotated file or both.
// Child loggers created with Named share the output of their parent.
type Logger struct {
	out *output

	Name  string
	Level LogLevel

	TimeFormat string
	File       string
	NoColor    bool
	JSON       bool
	NoTerminal bool
	Rotation   *LoggerRotation
}

type LoggerRotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// output serializes writes of every logger sharing it.
type output struct {
	mu      sync.Mutex
	writer  io.Writer
	closers []io.Closer
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func NewLogger(name string, level LogLevel, file string, noTerminal bool) *Logger {
	l := newLogger(name, level)
	l.File = file
	l.NoTerminal = noTerminal
	l.out = l.openOutput()

	return l
}

// NewWriterLogger creates a logger that writes uncolored lines to w only.
func NewWriterLogger(name string, level LogLevel, w io.Writer) *Logger {
	l := newLogger(name, level)
	l.NoColor = true
	l.out = &output{writer: w}

	return l
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return NewWriterLogger("", Off, io.Discard)
}

func newLogger(name string, level LogLevel) *Logger {
	return &Logger{
		Name:  name,
		Level: level,

		TimeFormat: "2006-01-02 15:04:05",
		Rotation: &LoggerRotation{
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
		},
	}
}

// openOutput combines stdout and the rotated log file. Stdout is kept when
// neither is enabled.
func (l *Logger) openOutput() *output {
	out := &output{}
	var writers []io.Writer

	if !l.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if l.File != "" {
		file := &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.Rotation.MaxSize,
			MaxBackups: l.Rotation.MaxBackups,
			MaxAge:     l.Rotation.MaxAge,
			Compress:   l.Rotation.Compress,
		}
		writers = append(writers, file)
		out.closers = append(out.closers, file)
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	out.writer = io.MultiWriter(writers...)
	return out
}

// Enabled reports whether messages of level are written.
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && l.Level < Off && level >= l.Level
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	line := l.format(level, time.Now(), fmt.Sprintf(msg, args...))

	l.out.mu.Lock()
	fmt.Fprintln(l.out.writer, line)
	l.out.mu.Unlock()

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) format(level LogLevel, now time.Time, message string) string {
	timestamp := now.Format(l.TimeFormat)

	if l.JSON {
		line, _ := json.Marshal(logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   l.Name,
			Message:   message,
		})
		return string(line)
	}

	prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
	if l.Name != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, l.Name)
	}

	line := prefix + " " + message
	if l.NoTerminal || l.NoColor {
		return line
	}
	return colorize(level, line)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a child logger sharing the same output.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}

	child := *l
	if l.Name != "" {
		child.Name = l.Name + "/" + name
	} else {
		child.Name = name
	}
	return &child
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	var errs []error
	for _, closer := range l.out.closers {
		errs = append(errs, closer.Close())
	}
	l.out.closers = nil
	return errors.Join(errs...)
}
