package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel понимает debug|info|warn|error, всё остальное — info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	mu    sync.Mutex
	level Level
	std   *log.Logger
}

func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

func NewWithWriter(level string, w io.Writer) *Logger {
	return &Logger{
		level: ParseLevel(level),
		std:   log.New(w, "", 0),
	}
}

// Discard drops everything; handy in tests.
func Discard() *Logger {
	return NewWithWriter("error", io.Discard)
}

func (l *Logger) Debugf(format string, args ...any) { l.printf(LevelDebug, "DEBUG", format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.printf(LevelInfo, "INFO ", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.printf(LevelWarn, "WARN ", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.printf(LevelError, "ERROR", format, args...) }

// Fatalf пишет ошибку и завершает процесс, как log.Fatalf.
func (l *Logger) Fatalf(format string, args ...any) {
	l.printf(LevelError, "FATAL", format, args...)
	os.Exit(1)
}

func (l *Logger) printf(lv Level, tag, format string, args ...any) {
	if l == nil || lv < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.std.Printf("%s [%s] %s", ts, tag, fmt.Sprintf(format, args...))
}
