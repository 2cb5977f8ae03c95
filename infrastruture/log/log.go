// Package log provides the prefixed, coloured line logger used across the app.
package log

import (
	"errors"
	"io"
	"log"
)

const (
	infoColor    = "\033[32m"
	warningColor = "\033[33m"
	errorColor   = "\033[31m"
	colorReset   = "\033[0m"
)

var ErrNilWriter = errors.New("log writer is required")

// Logger writes "[PREFIX] [LEVEL] message" lines.
type Logger struct {
	prefix string
	color  string
	out    *log.Logger
}

// New creates a Logger writing to w. color is an ANSI colour code for the prefix.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	return &Logger{
		prefix: prefix,
		color:  color,
		out:    log.New(w, "", log.LstdFlags),
	}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.write(infoColor, "INFO", msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.write(warningColor, "WARNING", msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.write(errorColor, "ERROR", msg)
}

func (l *Logger) write(levelColor, level, msg string) {
	l.out.Printf("%s[%s]%s %s[%s]%s %s\n",
		l.color, l.prefix, colorReset,
		levelColor, level, colorReset,
		msg)
}
