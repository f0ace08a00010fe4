package remotelog

import "time"

// RelayOption configures a Relay created with New.
type RelayOption interface {
	apply(*Relay)
}

// Port is the TCP port the relay listens on, on all interfaces. Zero picks
// a free port.
type Port int

func (p Port) apply(r *Relay) {
	r.port = int(p)
}

// Backlog is the length of the pending-connection queue of the listening
// socket. It is a kernel policy value, not a client count.
type Backlog int

func (b Backlog) apply(r *Relay) {
	r.backlog = int(b)
}

// AcceptTimeout bounds how long Accept (and so Initialize) blocks waiting for
// a client.
type AcceptTimeout time.Duration

func (t AcceptTimeout) apply(r *Relay) {
	r.acceptTimeout = time.Duration(t)
}

// IOTimeout bounds each write to the client. In synchronous mode the write
// happens inside the log call, so every log call made while the relay is
// installed may stall its caller for up to this duration.
type IOTimeout time.Duration

func (t IOTimeout) apply(r *Relay) {
	r.ioTimeout = time.Duration(t)
}

// ReservedTask is the task whose lines are never relayed.
type ReservedTask string

func (t ReservedTask) apply(r *Relay) {
	r.reserved = string(t)
}

// BufferCapacity is the maximum length in bytes of one relayed line. Longer
// lines are truncated. Values below 1 mean DefaultBufferCapacity.
type BufferCapacity int

func (c BufferCapacity) apply(r *Relay) {
	r.capacity = int(c)
}

// AsyncQueue switches the relay to a background sender with a queue of n
// lines. Log calls then never wait on the network; lines that do not fit in
// the queue are dropped. Zero keeps the synchronous behavior.
type AsyncQueue int

func (n AsyncQueue) apply(r *Relay) {
	r.queueLen = int(n)
}

// optionFunc allows options that touch more than one field.
type optionFunc struct {
	fn func(*Relay)
}

func (o optionFunc) apply(r *Relay) {
	o.fn(r)
}

// WithConfig returns a RelayOption applying every setting of cfg.
func WithConfig(cfg *Config) RelayOption {
	return optionFunc{
		fn: func(r *Relay) {
			for _, o := range cfg.Options() {
				o.apply(r)
			}
		},
	}
}
