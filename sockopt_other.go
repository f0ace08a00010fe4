//go:build !unix

package remotelog

import (
	"net"
	"syscall"
)

// reuseControl is a no-op where SO_REUSEADDR does not have the unix meaning.
func reuseControl(_, _ string, _ syscall.RawConn) error {
	return nil
}

// setBacklog is a no-op, the system default backlog is used.
func setBacklog(_ net.Listener, _ int) error {
	return nil
}
