package remotelog

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordSink is a local sink keeping every event it receives.
type recordSink struct {
	lk     sync.Mutex
	events []Event
	lines  []string
}

func (s *recordSink) Log(ev *Event) (int, error) {
	line := ev.String()

	s.lk.Lock()
	defer s.lk.Unlock()
	s.events = append(s.events, Event{Task: ev.Task, Format: ev.Format, Args: append([]any(nil), ev.Args...)})
	s.lines = append(s.lines, line)
	return len(line), nil
}

func (s *recordSink) Lines() []string {
	s.lk.Lock()
	defer s.lk.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *recordSink) Events() []Event {
	s.lk.Lock()
	defer s.lk.Unlock()
	return append([]Event(nil), s.events...)
}

// Count returns how many lines contain substr.
func (s *recordSink) Count(substr string) int {
	n := 0
	for _, l := range s.Lines() {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

// testClient is the remote end of a relay.
type testClient struct {
	net.Conn
	rd *bufio.Reader
}

func (c *testClient) readLine(t *testing.T) string {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(3 * time.Second))
	line, err := c.rd.ReadString('\n')
	require.NoError(t, err)
	return line
}

// loopback returns the address to dial to reach the relay's listener.
func loopback(t *testing.T, r *Relay) string {
	t.Helper()
	addr, ok := r.Addr().(*net.TCPAddr)
	require.True(t, ok, "relay is not listening on TCP")
	return fmt.Sprintf("127.0.0.1:%d", addr.Port)
}

// connectRelay runs Listen and Accept on r with a client dialing in.
func connectRelay(t *testing.T, r *Relay) *testClient {
	t.Helper()
	require.NoError(t, r.Listen(context.Background()))

	type result struct {
		c   net.Conn
		err error
	}
	ch := make(chan result, 1)
	addr := loopback(t, r)
	go func() {
		c, err := net.Dial("tcp", addr)
		ch <- result{c, err}
	}()

	require.NoError(t, r.Accept(context.Background()))
	res := <-ch
	require.NoError(t, res.err)
	t.Cleanup(func() { res.c.Close() })

	return &testClient{Conn: res.c, rd: bufio.NewReader(res.c)}
}

// startRelay returns an installed relay on a fresh hub, its local sink and
// its connected client. The greeting sent by Install has been consumed.
func startRelay(t *testing.T, opts ...RelayOption) (*Hub, *recordSink, *Relay, *testClient) {
	t.Helper()
	local := &recordSink{}
	hub := NewHub(local)

	base := []RelayOption{Port(0), AcceptTimeout(5 * time.Second), IOTimeout(2 * time.Second)}
	r := New(hub, append(base, opts...)...)
	t.Cleanup(func() { r.Teardown() })

	c := connectRelay(t, r)
	require.NoError(t, r.Install())
	require.Contains(t, c.readLine(t), "remote_log: Logger sink bind")

	return hub, local, r, c
}
