package remotelog

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// startTime is the reference for the millisecond timestamps printed by the
// level helpers of Logger.
var startTime = time.Now()

// Event is a single log call: a format string, its arguments and the name of
// the task that produced it. Events are only valid for the duration of the
// sink call that receives them.
type Event struct {
	Task   string
	Format string
	Args   []any
}

// AppendTo formats the event and appends the result to b.
func (ev *Event) AppendTo(b []byte) []byte {
	return fmt.Appendf(b, ev.Format, ev.Args...)
}

// String returns the formatted event.
func (ev *Event) String() string {
	return fmt.Sprintf(ev.Format, ev.Args...)
}

// Sink receives log events. It returns the number of bytes it produced for the
// event, the same way a vprintf-like function would.
type Sink interface {
	Log(ev *Event) (int, error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev *Event) (int, error)

func (f SinkFunc) Log(ev *Event) (int, error) {
	return f(ev)
}

// SinkHost is the extension point of a logging subsystem: a single active sink
// that can be read and replaced.
type SinkHost interface {
	// Sink returns the currently active sink.
	Sink() Sink
	// SetSink installs s as the active sink and returns the one it replaced.
	SetSink(s Sink) Sink
}

// sinkBox lets atomic.Pointer hold sinks of any concrete type.
type sinkBox struct {
	s Sink
}

// Hub is a process logging subsystem. Every log call made through one of its
// Loggers or Writers is handed to the active sink, which can be swapped at
// any time from any goroutine.
type Hub struct {
	sink atomic.Pointer[sinkBox]
}

// NewHub returns a Hub whose active sink is local.
func NewHub(local Sink) *Hub {
	h := &Hub{}
	h.sink.Store(&sinkBox{s: local})
	return h
}

// Sink returns the active sink, or nil if none is set.
func (h *Hub) Sink() Sink {
	if b := h.sink.Load(); b != nil {
		return b.s
	}
	return nil
}

// SetSink installs s and returns the sink that was active before.
func (h *Hub) SetSink(s Sink) Sink {
	if old := h.sink.Swap(&sinkBox{s: s}); old != nil {
		return old.s
	}
	return nil
}

// Log delivers ev to the active sink.
func (h *Hub) Log(ev *Event) (int, error) {
	s := h.Sink()
	if s == nil {
		return 0, nil
	}
	return s.Log(ev)
}

// Logger returns a Logger that logs through h on behalf of task.
func (h *Hub) Logger(task string) *Logger {
	return NewLogger(h, task)
}

// Writer returns an io.Writer turning every write into one event from task.
// It is meant to be passed to log.SetOutput or to a slog handler.
func (h *Hub) Writer(task string) io.Writer {
	return &hubWriter{h: h, task: task}
}

type hubWriter struct {
	h    *Hub
	task string
}

func (w *hubWriter) Write(p []byte) (int, error) {
	w.h.Log(&Event{Task: w.task, Format: "%s", Args: []any{string(p)}})
	return len(p), nil
}

// Logger is a task-bound handle to a SinkHost. The task name it carries is
// what the relay uses to identify where a line comes from.
type Logger struct {
	host SinkHost
	task string
}

// NewLogger returns a Logger for task logging through host's active sink.
func NewLogger(host SinkHost, task string) *Logger {
	return &Logger{host: host, task: task}
}

// Task returns the task name of the logger.
func (l *Logger) Task() string {
	return l.task
}

// Printf sends format and args unchanged to the active sink.
func (l *Logger) Printf(format string, args ...any) {
	l.logTo(l.host.Sink(), &Event{Task: l.task, Format: format, Args: args})
}

func (l *Logger) Errorf(format string, args ...any) { l.level('E', format, args) }
func (l *Logger) Warnf(format string, args ...any)  { l.level('W', format, args) }
func (l *Logger) Infof(format string, args ...any)  { l.level('I', format, args) }
func (l *Logger) Debugf(format string, args ...any) { l.level('D', format, args) }

func (l *Logger) level(lvl byte, format string, args []any) {
	l.logTo(l.host.Sink(), l.levelEvent(lvl, format, args))
}

// levelEvent builds "<L> (<ms>) <task>: <line>\n" without formatting it, so
// the sink still receives a format string and its arguments.
func (l *Logger) levelEvent(lvl byte, format string, args []any) *Event {
	full := make([]any, 0, len(args)+3)
	full = append(full, rune(lvl), time.Since(startTime).Milliseconds(), l.task)
	full = append(full, args...)
	return &Event{
		Task:   l.task,
		Format: "%c (%d) %s: " + format + "\n",
		Args:   full,
	}
}

func (l *Logger) logTo(s Sink, ev *Event) {
	if s != nil {
		s.Log(ev)
	}
}
