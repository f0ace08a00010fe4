package remotelog

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// Tail connects to a relay and copies what it sends to w until the relay
// closes the connection or ctx is done. A device often has several
// addresses; all of addrs are dialed at the same time and the first to
// connect is used.
//
// Tail never closes its write side: the relay takes end of input as a
// disconnect.
func Tail(ctx context.Context, w io.Writer, addrs ...string) (int64, error) {
	c, err := dialAll(ctx, DefaultAcceptTimeout, addrs)
	if err != nil {
		return 0, err
	}
	defer c.Close()

	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	n, err := io.Copy(w, c)
	if ctx.Err() != nil {
		return n, ctx.Err()
	}
	return n, err
}

// dialAll will dial all the provided hosts at the same time, and return the
// first one that was successful. If everything fails then the last error will
// be returned, unless everything timed out, in which case a timeout error
// will be returned.
func dialAll(ctx context.Context, timeout time.Duration, addr []string) (net.Conn, error) {
	if len(addr) == 0 {
		return nil, errors.New("no target to connect to")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	ch := make(chan net.Conn)
	che := make(chan error)

	for _, a := range addr {
		go func(a string) {
			c, err := d.DialContext(ctx, "tcp", a)
			if err != nil {
				select {
				case che <- err:
				case <-ctx.Done():
				}
				return
			}
			select {
			case ch <- c:
			case <-ctx.Done():
				c.Close()
			}
		}(a)
	}

	var err error
	failed := 0
	for {
		select {
		case c := <-ch:
			// got a connection!
			return c, nil
		case e := <-che:
			err = e
			failed++
			if failed == len(addr) {
				return nil, err
			}
		case <-ctx.Done():
			if err != nil {
				return nil, err
			}
			return nil, ctx.Err()
		}
	}
}
