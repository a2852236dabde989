package logger

import (
	"fmt"
	"io"
	"log"
)

type Logger struct {
	l     *log.Logger
	debug bool
}

func New(l *log.Logger) *Logger {
	return &Logger{l: l}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return New(log.New(io.Discard, "", 0))
}

// WithDebug returns a copy of the logger that also prints debug messages when enabled.
func (l *Logger) WithDebug(enabled bool) *Logger {
	return &Logger{l: l.l, debug: enabled}
}

func (l *Logger) LogErrorf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	l.l.Printf("[Error]: %s\n", msg)
}

func (l *Logger) LogInfo(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	l.l.Printf("[Info]: %s\n", msg)
}

func (l *Logger) LogDebugf(format string, v ...any) {
	if !l.debug {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.l.Printf("[Debug]: %s\n", msg)
}
