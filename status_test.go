package remotelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusStates(t *testing.T) {
	r := New(NewHub(&recordSink{}), Port(0))
	assert.Equal(t, StateIdle, r.Status().State)

	_, _, r, _ = startRelay(t)
	st := r.Status()
	assert.Equal(t, StateInstalled, st.State)
	assert.NotEmpty(t, st.ListenAddr)
	assert.NotEmpty(t, st.ClientAddr)
	assert.Len(t, st.Session, 36)
}

func TestStatusBinary(t *testing.T) {
	hub, _, r, c := startRelay(t)
	hub.Logger("main").Printf("one\n")
	c.readLine(t)

	data, err := r.Status().MarshalBinary()
	require.NoError(t, err)

	var st Status
	require.NoError(t, st.UnmarshalBinary(data))
	assert.Equal(t, *r.Status(), st)
	assert.EqualValues(t, 2, st.Sent)
}
