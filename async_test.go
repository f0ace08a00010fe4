package remotelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncRelayForwards(t *testing.T) {
	hub, local, r, c := startRelay(t, AsyncQueue(16))

	hub.Logger("main").Printf("queued %d\n", 1)
	hub.Logger(DefaultReservedTask).Printf("skipped\n")
	hub.Logger("main").Printf("queued %d\n", 2)

	assert.Equal(t, "queued 1\n", c.readLine(t))
	assert.Equal(t, "queued 2\n", c.readLine(t))
	assert.Equal(t, 1, local.Count("skipped"))

	require.Eventually(t, func() bool { return r.Status().Sent == 3 }, 3*time.Second, 10*time.Millisecond)
}

func TestAsyncRelayDropsWhenFull(t *testing.T) {
	hub, local, r, _ := startRelay(t, AsyncQueue(16))

	// swap in a sender that nobody drains
	r.lk.Lock()
	r.q.stop()
	r.q = newSender(r, r.conn, 1, time.Second)
	r.lk.Unlock()

	log := hub.Logger("main")
	for i := 0; i < 3; i++ {
		log.Printf("line %d\n", i)
	}

	assert.EqualValues(t, 2, r.Status().Dropped)
	assert.Equal(t, 3, local.Count("line "), "dropped lines are still logged locally")
}

func TestAsyncRelayClientDisconnect(t *testing.T) {
	hub, local, r, c := startRelay(t, AsyncQueue(4))
	require.NoError(t, c.Close())

	log := hub.Logger("main")
	require.Eventually(t, func() bool {
		log.Printf("ping\n")
		return !r.Installed()
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, local.Count("failed to send the message to client"))
	require.Same(t, local, hub.Sink())
	assert.Equal(t, StateIdle, r.Status().State)
}

func TestSenderEnqueue(t *testing.T) {
	s := newSender(nil, nil, 1, 0)
	assert.True(t, s.enqueue([]byte("a")))
	assert.False(t, s.enqueue([]byte("b")))
}
