package remotelog

import "time"

// sender writes queued lines to the client from its own goroutine, so that
// log calls never wait on the network.
type sender struct {
	r       *Relay
	conn    *clientConn
	ch      chan []byte
	quit    chan struct{}
	timeout time.Duration
}

func newSender(r *Relay, conn *clientConn, queueLen int, timeout time.Duration) *sender {
	return &sender{
		r:       r,
		conn:    conn,
		ch:      make(chan []byte, queueLen),
		quit:    make(chan struct{}),
		timeout: timeout,
	}
}

// enqueue never blocks. It reports false when the line was dropped.
func (s *sender) enqueue(p []byte) bool {
	select {
	case s.ch <- p:
		return true
	default:
		return false
	}
}

// stop is called with the relay lock held and must not wait for run.
func (s *sender) stop() {
	close(s.quit)
}

func (s *sender) run() {
	for {
		select {
		case <-s.quit:
			return
		case p := <-s.ch:
			if err := s.conn.send(p, s.timeout); err != nil {
				s.r.senderFailed(s, err)
				return
			}
			s.r.countSent(len(p))
		}
	}
}

// senderFailed runs the failure protocol on behalf of the background sender.
func (r *Relay) senderFailed(s *sender, err error) {
	r.lk.Lock()
	if r.q != s {
		// already torn down or replaced
		r.lk.Unlock()
		return
	}
	local := r.prev
	fail := r.failLocked(err)
	r.lk.Unlock()

	r.reportFailure(local, fail)
}
