package remotelog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// clientConn is the accepted client connection. The relay only writes to it;
// a watcher goroutine drains whatever the client sends (telnet negotiation,
// keystrokes) and notices when the client goes away.
type clientConn struct {
	net.Conn
	hangup atomic.Bool
}

func newClientConn(c net.Conn) *clientConn {
	cc := &clientConn{Conn: c}
	go cc.watch()
	return cc
}

func (c *clientConn) watch() {
	io.Copy(io.Discard, c.Conn)
	c.hangup.Store(true)
}

// send writes p in full or fails. The write deadline is set on every call:
// Go deadlines belong to a single descriptor and are never inherited from the
// listening socket.
func (c *clientConn) send(p []byte, timeout time.Duration) error {
	if c.hangup.Load() {
		return fmt.Errorf("%w: %w", ErrSend, errHangup)
	}
	if timeout > 0 {
		c.SetWriteDeadline(time.Now().Add(timeout))
	}
	if _, err := c.Write(p); err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return fmt.Errorf("%w: %w", ErrSendTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	return nil
}

// Listen creates the listening socket: address reuse, bind on all interfaces
// to the configured port, listen with the configured backlog.
func (r *Relay) Listen(ctx context.Context) error {
	r.lk.Lock()
	if r.ln != nil {
		r.lk.Unlock()
		return fmt.Errorf("%w: already listening on %s", ErrListen, r.ln.Addr())
	}

	lc := net.ListenConfig{Control: reuseControl}
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(r.port)))
	if err != nil {
		r.lk.Unlock()
		return classifyListenError(err)
	}
	if err := setBacklog(ln, r.backlog); err != nil {
		ln.Close()
		r.lk.Unlock()
		return classifyListenError(err)
	}
	r.ln = ln
	r.lk.Unlock()

	r.publish(ListeningEvent{Addr: ln.Addr().String()})
	r.log.Infof("Server created on %s, please use telnet to debug me in %s!", ln.Addr(), r.acceptTimeout)
	return nil
}

// classifyListenError maps the failing system call to the error taxonomy.
func classifyListenError(err error) error {
	var se *os.SyscallError
	if errors.As(err, &se) {
		switch se.Syscall {
		case "socket":
			return fmt.Errorf("%w: %w", ErrSocketCreation, err)
		case "setsockopt":
			return fmt.Errorf("%w: %w", ErrSocketOption, err)
		case "listen":
			return fmt.Errorf("%w: %w", ErrListen, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrBind, err)
}

// Accept blocks until a client connects, the accept timeout elapses or ctx is
// done. A relay accepts exactly one client per lifecycle. On failure the
// listening socket is released.
func (r *Relay) Accept(ctx context.Context) error {
	r.lk.Lock()
	ln, conn := r.ln, r.conn
	r.lk.Unlock()

	if ln == nil {
		return fmt.Errorf("%w: not listening", ErrAccept)
	}
	if conn != nil {
		return fmt.Errorf("%w: client %s already connected", ErrAccept, conn.RemoteAddr())
	}

	dl, _ := ln.(interface{ SetDeadline(time.Time) error })
	if dl != nil && r.acceptTimeout > 0 {
		dl.SetDeadline(time.Now().Add(r.acceptTimeout))
	}
	stop := context.AfterFunc(ctx, func() {
		if dl != nil {
			// wake up Accept
			dl.SetDeadline(time.Unix(1, 0))
		}
	})
	c, err := ln.Accept()
	stop()

	if err != nil {
		r.releaseListener(ln)
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrAccept, ctx.Err())
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return fmt.Errorf("%w: %w", ErrAcceptTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrAccept, err)
	}
	if dl != nil {
		dl.SetDeadline(time.Time{})
	}

	r.lk.Lock()
	if r.ln != ln || r.conn != nil {
		// torn down while we were waiting
		r.lk.Unlock()
		c.Close()
		return fmt.Errorf("%w: %w", ErrAccept, net.ErrClosed)
	}
	r.conn = newClientConn(c)
	r.session = uuid.New()
	session := r.session
	r.lk.Unlock()

	mConnected.Set(1)
	r.publish(ConnectedEvent{Session: session.String(), Client: c.RemoteAddr().String()})
	r.log.Infof("Client %s connected, session %s", c.RemoteAddr(), session)
	return nil
}

// releaseListener closes ln if it is still the relay's listening socket.
func (r *Relay) releaseListener(ln net.Listener) {
	r.lk.Lock()
	defer r.lk.Unlock()

	if r.ln == ln {
		ln.Close()
		r.ln = nil
	}
}

// closeSocketsLocked closes the client then the listening socket. Fields are
// cleared even when close fails so teardown never retries a dead descriptor.
// It reports whether anything was open.
func (r *Relay) closeSocketsLocked() (bool, error) {
	var errs []error
	open := r.conn != nil || r.ln != nil

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: client: %w", ErrClose, err))
		}
		r.conn = nil
	}
	if r.ln != nil {
		if err := r.ln.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: listener: %w", ErrClose, err))
		}
		r.ln = nil
	}
	r.session = uuid.Nil
	if open {
		mConnected.Set(0)
	}
	return open, errors.Join(errs...)
}
