package utils

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger with info, warn and error levels
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

// Log is the process-wide logger
var Log = NewLogger(os.Stdout, os.Stderr)

func NewLogger(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		info:  log.New(out, "INFO: ", flags),
		warn:  log.New(out, "WARN: ", flags),
		error: log.New(errOut, "ERROR: ", flags),
	}
}

func (l *Logger) Info(msg string) {
	_ = l.info.Output(2, msg)
}

func (l *Logger) Infof(format string, args ...any) {
	_ = l.info.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(msg string) {
	_ = l.warn.Output(2, msg)
}

func (l *Logger) Warnf(format string, args ...any) {
	_ = l.warn.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) {
	_ = l.error.Output(2, msg)
}

func (l *Logger) Errorf(format string, args ...any) {
	_ = l.error.Output(2, fmt.Sprintf(format, args...))
}

// Writer exposes the info stream, e.g. for gin's access log.
func (l *Logger) Writer() io.Writer {
	return l.info.Writer()
}
