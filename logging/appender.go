package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// timeFormat is used by ConsoleAppender for human-readable timestamps.
const timeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender is an output destination for log entries: a small subset of
// zapcore.Core, so a planner can be told to log to stdout, a file, or both,
// without pulling the rest of zap's Core contract into this package's API.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// ConsoleAppender writes human-readable, tab-separated lines to an
// io.Writer.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender returns an Appender that writes to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender returns an Appender that writes to w.
func NewWriterAppender(w io.Writer) ConsoleAppender {
	return ConsoleAppender{w}
}

// NewFileAppender returns an Appender that writes to a rotating log file at
// filename. The returned io.Closer should be closed at shutdown.
func NewFileAppender(filename string) (Appender, io.Closer, error) {
	lj := &lumberjack.Logger{
		Filename: filename,
		MaxSize:  1024, // megabytes; rotate well before a single run fills the disk.
	}
	if err := lj.Rotate(); err != nil {
		return nil, nil, fmt.Errorf("logging: creating log file: %w", err)
	}
	return NewWriterAppender(lj), lj, nil
}

// Write renders entry and fields as one tab-separated line.
func (a ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	parts := make([]string, 0, 5)
	parts = append(parts, entry.Time.UTC().Format(timeFormat))
	parts = append(parts, strings.ToUpper(entry.Level.String()))
	parts = append(parts, entry.LoggerName)
	if entry.Caller.Defined {
		parts = append(parts, callerToString(&entry.Caller))
	}
	parts = append(parts, entry.Message)

	if len(fields) > 0 {
		fieldsJSON, err := fieldsToJSON(fields)
		if err != nil {
			parts = append(parts, fmt.Sprintf("<logging error: %v>", err))
		} else {
			parts = append(parts, fieldsJSON)
		}
	}

	_, err := fmt.Fprintln(a.Writer, strings.Join(parts, "\t"))
	return err
}

// Sync is a no-op; ConsoleAppender writers are unbuffered from this
// package's perspective.
func (a ConsoleAppender) Sync() error { return nil }

// fieldsToJSON serializes fields, in order, as a JSON object. It recovers
// from zap's encoder panicking on malformed field data rather than taking
// down the caller's goroutine over a logging call.
func fieldsToJSON(fields []zapcore.Field) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic serializing log fields: %v", r)
		}
	}()
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// callerToString trims caller.File down to its last two path segments, so
// log lines stay readable regardless of GOPATH/module layout.
func callerToString(caller *zapcore.EntryCaller) string {
	cnt := 0
	idx := strings.LastIndexFunc(caller.File, func(r rune) bool {
		if r == '/' {
			cnt++
		}
		return cnt == 2
	})
	return fmt.Sprintf("%s:%d", caller.File[idx+1:], caller.Line)
}
