// Copyright (c) 2023 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.


// Package logger holds the process-wide logger used by burnfw. Messages go
// to stderr and, when available, to the system log, since updates usually
// run unattended.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log/syslog"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger receives formatted messages at two levels.
type Logger interface {
	// Noticef logs something the operator should see.
	Noticef(format string, v ...any)
	// Debugf logs details only needed when investigating a failed update.
	Debugf(format string, v ...any)
}

type nullLogger struct{}

func (nullLogger) Noticef(format string, v ...any) {}
func (nullLogger) Debugf(format string, v ...any)  {}

// NullLogger discards everything.
var NullLogger Logger = nullLogger{}

var (
	mu      sync.Mutex
	current Logger = NullLogger
)

// SetLogger installs l as the process-wide logger and returns the
// previous one.
func SetLogger(l Logger) (old Logger) {
	mu.Lock()
	defer mu.Unlock()
	old, current = current, l
	return old
}

func Noticef(format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()
	current.Noticef(format, v...)
}

func Debugf(format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()
	current.Debugf(format, v...)
}

// Panicf logs the message and then panics with it.
func Panicf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	mu.Lock()
	current.Noticef("PANIC %s", msg)
	mu.Unlock()
	panic(msg)
}

// DebugEnabled reports whether debug messages are written, which is
// requested by setting BURNFW_DEBUG=1.
func DebugEnabled() bool {
	return os.Getenv("BURNFW_DEBUG") == "1"
}

type writerLogger struct {
	w      io.Writer
	prefix string
	buf    []byte
}

// New returns a Logger writing timestamped lines to w. The prefix is
// placed between the timestamp and the message.
func New(w io.Writer, prefix string) Logger {
	return &writerLogger{w: w, prefix: prefix, buf: make([]byte, 0, 256)}
}

func (l *writerLogger) Noticef(format string, v ...any) {
	l.write("", format, v)
}

func (l *writerLogger) Debugf(format string, v ...any) {
	if DebugEnabled() {
		l.write("DEBUG ", format, v)
	}
}

func (l *writerLogger) write(level, format string, v []any) {
	b := AppendTimestamp(l.buf[:0], time.Now())
	b = append(b, ' ')
	b = append(b, l.prefix...)
	b = append(b, level...)
	b = fmt.Appendf(b, format, v...)
	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	l.w.Write(b)
	l.buf = b
}

const timestampLayout = "2006-01-02T15:04:05.000Z"

// AppendTimestamp appends t in UTC as "YYYY-MM-DDTHH:mm:ss.sssZ".
func AppendTimestamp(b []byte, t time.Time) []byte {
	return t.UTC().AppendFormat(b, timestampLayout)
}

type syslogLogger struct {
	w *syslog.Writer
}

var dialSyslog = func(tag string) (*syslog.Writer, error) {
	return syslog.New(syslog.LOG_NOTICE|syslog.LOG_DAEMON, tag)
}

// NewSyslog returns a Logger sending messages to the local syslog daemon
// under tag. Debug messages are only sent when DebugEnabled.
func NewSyslog(tag string) (Logger, error) {
	w, err := dialSyslog(tag)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to syslog: %w", err)
	}
	return &syslogLogger{w: w}, nil
}

func (l *syslogLogger) Noticef(format string, v ...any) {
	l.w.Notice(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

func (l *syslogLogger) Debugf(format string, v ...any) {
	if DebugEnabled() {
		l.w.Debug(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
	}
}

type multiLogger []Logger

// Multi returns a Logger that forwards every message to all of loggers.
func Multi(loggers ...Logger) Logger {
	return multiLogger(loggers)
}

func (m multiLogger) Noticef(format string, v ...any) {
	for _, l := range m {
		l.Noticef(format, v...)
	}
}

func (m multiLogger) Debugf(format string, v ...any) {
	for _, l := range m {
		l.Debugf(format, v...)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// MockLogger installs a logger writing to a buffer and returns the buffer
// together with a function restoring the previous logger.
func MockLogger(prefix string) (fmt.Stringer, func()) {
	buf := &syncBuffer{}
	old := SetLogger(New(buf, prefix))
	return buf, func() {
		SetLogger(old)
	}
}
