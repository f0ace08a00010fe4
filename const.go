package remotelog

import "time"

const (
	DefaultPort           = 23 // telnet
	DefaultBacklog        = 1
	DefaultAcceptTimeout  = 30 * time.Second
	DefaultIOTimeout      = 30 * time.Second
	DefaultBufferCapacity = 1024

	// DefaultReservedTask is the name of the network stack task. Lines logged
	// from it are never relayed, as sending them would log again from the
	// same task.
	DefaultReservedTask = "tiT"

	// relayTask is the task name used for the relay's own messages.
	relayTask = "remote_log"

	historySize = 1024 * 1024 // 1MB of local log history
)
