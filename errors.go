package remotelog

import "errors"

// Error constants used throughout the remotelog library. Failures are wrapped
// around these values so callers can test them with errors.Is.
var (
	// ErrSocketCreation is returned when the listening socket cannot be
	// created at all.
	ErrSocketCreation = errors.New("failed to create socket")

	// ErrSocketOption is returned when an option (such as address reuse)
	// cannot be applied to a freshly created socket.
	ErrSocketOption = errors.New("failed to set socket option")

	// ErrBind is returned when the listening socket cannot be bound to the
	// configured port, typically because someone else is using it.
	ErrBind = errors.New("failed to bind port")

	// ErrListen is returned when a bound socket cannot be put in listening mode.
	ErrListen = errors.New("failed to listen")

	// ErrAccept is returned when accepting the client connection fails for a
	// reason other than a timeout.
	ErrAccept = errors.New("failed to accept client")

	// ErrAcceptTimeout is returned when no client connected before the accept
	// timeout elapsed.
	ErrAcceptTimeout = errors.New("timed out waiting for client")

	// ErrSend is returned when a log line could not be written to the client.
	ErrSend = errors.New("failed to send to client")

	// ErrSendTimeout is returned when writing a log line to the client did not
	// complete within the I/O timeout.
	ErrSendTimeout = errors.New("timed out sending to client")

	// ErrClose is returned by Teardown when the OS reported an error while
	// closing a descriptor. The descriptor is forgotten regardless.
	ErrClose = errors.New("failed to close socket")

	// ErrAlreadyInstalled is returned when Install is called on a relay that
	// is already the active sink.
	ErrAlreadyInstalled = errors.New("relay sink already installed")

	// ErrNotInstalled is returned by Uninstall when the relay is not the
	// active sink. Teardown treats this as a no-op.
	ErrNotInstalled = errors.New("relay sink not installed")

	// ErrNotConnected is returned by Install when no client is connected yet.
	ErrNotConnected = errors.New("no client connected")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// errHangup is recorded by the read watcher when the client closed its
	// side of the connection.
	errHangup = errors.New("client hung up")
)
