package remotelog

import "sync"

// Process relay management. These variables hold the Relay created by Init.
var (
	// self holds the process Relay
	self *Relay

	// selfLk protects access to the self variable
	selfLk sync.RWMutex

	// selfCond is signaled whenever self changes
	selfCond = sync.NewCond(selfLk.RLocker())
)

// Self returns the process Relay created by Init, blocking until one has been
// installed.
//
// IMPORTANT: Init only returns once a client connected, so this may block for
// a long time. Do not call it from init() functions.
func Self() *Relay {
	selfLk.RLock()
	defer selfLk.RUnlock()

	for {
		if self != nil {
			return self
		}
		selfCond.Wait()
	}
}

// selfNoWait returns the process Relay, or nil.
func selfNoWait() *Relay {
	selfLk.RLock()
	defer selfLk.RUnlock()
	return self
}

// setSelf replaces the process Relay and wakes up Self callers.
func setSelf(r *Relay) {
	selfLk.Lock()
	defer selfLk.Unlock()

	self = r
	selfCond.Broadcast()
}

// takeSelf clears the process Relay and returns what it held.
func takeSelf() *Relay {
	selfLk.Lock()
	defer selfLk.Unlock()

	r := self
	self = nil
	return r
}

// IsReady reports whether the process Relay exists and is currently relaying.
// It turns false after a transport failure.
func IsReady() bool {
	r := selfNoWait()
	if r == nil {
		return false
	}
	return r.Installed()
}
