// Package remotelog relays the process log stream to a single TCP client.
//
// A Relay listens on a port, waits for one client (typically telnet or nc),
// then installs itself as the active sink of a SinkHost. From then on every
// log line is sent to the client and still delivered to the sink that was
// active before, so local output is never lost. When the client goes away the
// relay closes its sockets and puts the previous sink back.
package remotelog

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/KarpelesLab/emitter"
	"github.com/google/uuid"
	"github.com/kelindar/event"
)

// Relay forwards log events to a single TCP client.
//
// The client is only ever written to. Its input is drained, and end of input
// is taken as a disconnect: a client that half-closes its side (nc -N, or
// ncat with stdin from /dev/null) is dropped at the next log line. Keep the
// write half open for as long as you want to receive logs.
type Relay struct {
	Events *emitter.Hub // lifecycle topics, see TopicListening and friends

	// settings
	host          SinkHost
	port          int
	backlog       int
	acceptTimeout time.Duration
	ioTimeout     time.Duration
	reserved      string
	capacity      int
	queueLen      int

	log    *Logger           // relay's own messages
	events *event.Dispatcher // lifecycle notifications

	// lk guards the fields below. It is held across format and send so that
	// concurrent log calls never interleave inside the shared buffer.
	lk        sync.Mutex
	ln        net.Listener
	conn      *clientConn
	session   uuid.UUID
	buf       []byte
	prev      Sink
	installed bool
	q         *sender

	sent      atomic.Uint64
	bytes     atomic.Uint64
	filtered  atomic.Uint64
	truncated atomic.Uint64
	dropped   atomic.Uint64
	failures  atomic.Uint64
}

// New returns a Relay that will install itself on host. A nil host means the
// process Hub returned by Default.
func New(host SinkHost, opts ...RelayOption) *Relay {
	if host == nil {
		host = Default()
	}
	r := &Relay{
		host:          host,
		port:          DefaultPort,
		backlog:       DefaultBacklog,
		acceptTimeout: DefaultAcceptTimeout,
		ioTimeout:     DefaultIOTimeout,
		reserved:      DefaultReservedTask,
		capacity:      DefaultBufferCapacity,
		events:        event.NewDispatcher(),
		Events:        emitter.New(),
	}
	for _, o := range opts {
		o.apply(r)
	}
	if r.capacity <= 0 {
		r.capacity = DefaultBufferCapacity
	}
	r.log = NewLogger(host, relayTask)
	r.buf = make([]byte, 0, r.capacity)
	return r
}

// Initialize runs the whole bring-up: Listen, Accept, then Install. It blocks
// until a client connects or the accept timeout elapses. Any failure leaves
// the relay torn down.
func (r *Relay) Initialize(ctx context.Context) error {
	if err := r.Listen(ctx); err != nil {
		return err
	}
	if err := r.Accept(ctx); err != nil {
		return err
	}
	if err := r.Install(); err != nil {
		r.Teardown()
		return err
	}
	return nil
}

// Install makes the relay the active sink of its host, remembering the sink
// it replaces. A client must be connected.
func (r *Relay) Install() error {
	r.lk.Lock()
	if r.installed {
		r.lk.Unlock()
		return ErrAlreadyInstalled
	}
	if r.conn == nil {
		r.lk.Unlock()
		return ErrNotConnected
	}
	r.prev = r.host.SetSink(r)
	r.installed = true
	if r.queueLen > 0 {
		r.q = newSender(r, r.conn, r.queueLen, r.ioTimeout)
		go r.q.run()
	}
	r.lk.Unlock()

	r.log.Infof("Logger sink bind successful!")
	return nil
}

// Uninstall puts the previous sink back. It does not touch the sockets.
func (r *Relay) Uninstall() error {
	r.lk.Lock()
	defer r.lk.Unlock()

	if !r.installed {
		return ErrNotInstalled
	}
	r.restoreLocked()
	return nil
}

func (r *Relay) restoreLocked() {
	r.host.SetSink(r.prev)
	r.prev = nil
	r.installed = false
	if r.q != nil {
		r.q.stop()
		r.q = nil
	}
}

// Installed reports whether the relay is the active sink of its host.
func (r *Relay) Installed() bool {
	r.lk.Lock()
	defer r.lk.Unlock()
	return r.installed
}

// Addr returns the address of the listening socket, or nil.
func (r *Relay) Addr() net.Addr {
	r.lk.Lock()
	defer r.lk.Unlock()
	if r.ln == nil {
		return nil
	}
	return r.ln.Addr()
}

// Teardown restores the previous sink if the relay is installed, then closes
// the client and listening sockets. Sockets are forgotten even if closing
// them fails; such failures are returned wrapped in ErrClose. Calling
// Teardown again is a no-op.
func (r *Relay) Teardown() error {
	r.lk.Lock()
	wasInstalled := r.installed
	if wasInstalled {
		r.restoreLocked()
	}
	open, err := r.closeSocketsLocked()
	r.lk.Unlock()

	if err != nil {
		slog.Warn(fmt.Sprintf("[remotelog] teardown: %s", err), "event", "remotelog:teardown:close_fail")
	}
	if wasInstalled || open {
		r.publish(ClosedEvent{})
		r.log.Infof("Remote log closed")
	}
	return err
}

// Log is the relay sink. Lines from the reserved task are not relayed; other
// lines are formatted (truncated to the buffer capacity) and written to the
// client. Whatever happens, the event is then delivered to the previous sink
// and its result returned.
//
// In synchronous mode the write to the client happens here, on the caller's
// goroutine, and may block for up to the I/O timeout. A failed write tears
// the relay down and restores the previous sink; the failure is reported
// through the previous sink only and never returned to the caller.
func (r *Relay) Log(ev *Event) (int, error) {
	local, fail := r.relay(ev)
	if fail != nil {
		r.reportFailure(local, fail)
	}
	if local == nil {
		return 0, nil
	}
	return local.Log(ev)
}

// relayFailure carries what went wrong out of the critical section, so that
// reporting happens without holding the lock.
type relayFailure struct {
	err      error
	closeErr error
}

// relay performs the forwarding part of Log and returns the sink the event
// must be delivered to locally.
func (r *Relay) relay(ev *Event) (Sink, *relayFailure) {
	r.lk.Lock()
	defer r.lk.Unlock()

	if !r.installed {
		// a call that raced with restoration
		local := r.host.Sink()
		if s, ok := local.(*Relay); ok && s == r {
			return nil, nil
		}
		return local, nil
	}
	local := r.prev

	if ev.Task == r.reserved {
		r.filtered.Add(1)
		mFiltered.Inc()
		return local, nil
	}

	if r.q != nil {
		p, trunc := appendBounded(nil, r.capacity, ev)
		r.countTruncated(trunc)
		if !r.q.enqueue(p) {
			r.dropped.Add(1)
			mDropped.Inc()
		}
		return local, nil
	}

	payload, trunc := appendBounded(r.buf[:0], r.capacity, ev)
	r.countTruncated(trunc)
	if err := r.conn.send(payload, r.ioTimeout); err != nil {
		return local, r.failLocked(err)
	}
	r.countSent(len(payload))
	return local, nil
}

// failLocked tears the relay down after a transport failure.
func (r *Relay) failLocked(err error) *relayFailure {
	r.failures.Add(1)
	mFailures.Inc()
	_, closeErr := r.closeSocketsLocked()
	r.restoreLocked()
	return &relayFailure{err: err, closeErr: closeErr}
}

// reportFailure logs a transport failure through local only: the relay must
// never try to relay its own failure.
func (r *Relay) reportFailure(local Sink, fail *relayFailure) {
	r.log.logTo(local, r.log.levelEvent('E', "Oops, failed to send the message to client: %s", []any{fail.err}))
	if fail.closeErr != nil {
		slog.Warn(fmt.Sprintf("[remotelog] teardown after failure: %s", fail.closeErr), "event", "remotelog:teardown:close_fail")
	}
	r.publish(FailedEvent{Err: fail.err})
	r.publish(ClosedEvent{})
}

func (r *Relay) countSent(n int) {
	r.sent.Add(1)
	r.bytes.Add(uint64(n))
	mSent.Inc()
	mBytes.Add(float64(n))
}

func (r *Relay) countTruncated(trunc bool) {
	if trunc {
		r.truncated.Add(1)
		mTruncated.Inc()
	}
}

// appendBounded formats ev after dst, keeping at most capacity bytes of
// output. The cut never splits a UTF-8 sequence. When the line had to be cut
// and ended with a newline, the newline is kept as the last byte. It reports
// whether truncation happened.
func appendBounded(dst []byte, capacity int, ev *Event) ([]byte, bool) {
	start := len(dst)
	dst = ev.AppendTo(dst)
	if capacity <= 0 || len(dst)-start <= capacity {
		return dst, false
	}
	nl := dst[len(dst)-1] == '\n'
	end := start + capacity
	if nl {
		end--
	}
	for end > start && !utf8.RuneStart(dst[end]) {
		end--
	}
	dst = dst[:end]
	if nl {
		dst = append(dst, '\n')
	}
	return dst, true
}
