package remotelog

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/KarpelesLab/ringbuf"
)

// ConsoleSink is the local sink: it writes every event to a console and keeps
// the most recent output in a ring buffer.
type ConsoleSink struct {
	lk   sync.Mutex
	out  io.Writer
	hist *ringbuf.Writer
	buf  []byte
}

// NewConsoleSink returns a ConsoleSink writing to out. If the history buffer
// cannot be allocated the sink still works, without history.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	c := &ConsoleSink{out: out}

	hist, err := ringbuf.New(historySize)
	if err == nil {
		c.hist = hist
		c.out = io.MultiWriter(out, hist)
	} else {
		slog.Warn(fmt.Sprintf("[remotelog] Failed to setup log history: %s", err), "event", "remotelog:console:hist_fail")
	}
	return c
}

func (c *ConsoleSink) Log(ev *Event) (int, error) {
	c.lk.Lock()
	defer c.lk.Unlock()

	c.buf = ev.AppendTo(c.buf[:0])
	return c.out.Write(c.buf)
}

// History copies the retained console output to w.
func (c *ConsoleSink) History(w io.Writer) (int64, error) {
	if c.hist == nil {
		return 0, nil
	}
	r := c.hist.Reader()
	defer r.Close()
	return io.Copy(w, r)
}

// Close releases the history buffer.
func (c *ConsoleSink) Close() {
	if c.hist != nil {
		c.hist.Close()
	}
}

var (
	stdHub     *Hub
	stdConsole *ConsoleSink
	stdOnce    sync.Once
)

func initLog() {
	stdConsole = NewConsoleSink(os.Stdout)
	stdHub = NewHub(stdConsole)
}

// Default returns the process Hub. Its local sink prints to stdout.
func Default() *Hub {
	stdOnce.Do(initLog)
	return stdHub
}

// LogDmesg copies the recent local output of the process Hub to w.
func LogDmesg(w io.Writer) (int64, error) {
	Default()
	return stdConsole.History(w)
}

// RedirectStdLog sends the output of the standard log package through the
// process Hub, as lines from task.
func RedirectStdLog(task string) {
	log.SetOutput(Default().Writer(task))
}

// Printf logs through the process Hub on behalf of task.
func Printf(task, format string, args ...any) {
	Default().Logger(task).Printf(format, args...)
}
