package remotelog

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Relay states as reported by Status.
const (
	StateIdle      = "idle"
	StateListening = "listening"
	StateConnected = "connected"
	StateInstalled = "installed"
)

// Status is a snapshot of a relay.
type Status struct {
	State      string `cbor:"state" json:"state"`
	Session    string `cbor:"session,omitempty" json:"session,omitempty"`
	ListenAddr string `cbor:"listen,omitempty" json:"listen,omitempty"`
	ClientAddr string `cbor:"client,omitempty" json:"client,omitempty"`
	Sent       uint64 `cbor:"sent" json:"sent"`
	Bytes      uint64 `cbor:"bytes" json:"bytes"`
	Filtered   uint64 `cbor:"filtered" json:"filtered"`
	Truncated  uint64 `cbor:"truncated" json:"truncated"`
	Dropped    uint64 `cbor:"dropped" json:"dropped"`
	Failures   uint64 `cbor:"failures" json:"failures"`
}

// status has no methods, so cbor encodes it as a plain map.
type status Status

// MarshalBinary encodes the status as CBOR.
func (s *Status) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*status)(s))
}

// UnmarshalBinary decodes a CBOR encoded status.
func (s *Status) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, (*status)(s))
}

// Status returns a snapshot of the relay.
func (r *Relay) Status() *Status {
	r.lk.Lock()
	defer r.lk.Unlock()

	st := &Status{
		State:     StateIdle,
		Sent:      r.sent.Load(),
		Bytes:     r.bytes.Load(),
		Filtered:  r.filtered.Load(),
		Truncated: r.truncated.Load(),
		Dropped:   r.dropped.Load(),
		Failures:  r.failures.Load(),
	}
	if r.ln != nil {
		st.State = StateListening
		st.ListenAddr = r.ln.Addr().String()
	}
	if r.conn != nil {
		st.State = StateConnected
		st.ClientAddr = r.conn.RemoteAddr().String()
	}
	if r.session != uuid.Nil {
		st.Session = r.session.String()
	}
	if r.installed {
		st.State = StateInstalled
	}
	return st
}
