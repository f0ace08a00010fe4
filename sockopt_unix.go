//go:build unix

package remotelog

import (
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl enables SO_REUSEADDR before bind so that a restart after an
// unclean shutdown does not fail on a port still in TIME_WAIT.
func reuseControl(_, _ string, c syscall.RawConn) error {
	var controlErr error
	err := c.Control(func(fd uintptr) {
		controlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if controlErr != nil {
		return os.NewSyscallError("setsockopt", controlErr)
	}
	return err
}

// setBacklog calls listen(2) again on an already listening socket, which
// updates the length of its pending-connection queue. The standard library
// always uses the system maximum.
func setBacklog(ln net.Listener, backlog int) error {
	tl, ok := ln.(*net.TCPListener)
	if !ok || backlog <= 0 {
		return nil
	}
	rc, err := tl.SyscallConn()
	if err != nil {
		return err
	}
	var listenErr error
	err = rc.Control(func(fd uintptr) {
		listenErr = unix.Listen(int(fd), backlog)
	})
	if listenErr != nil {
		return os.NewSyscallError("listen", listenErr)
	}
	return err
}
