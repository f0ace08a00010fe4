package remotelog

import "context"

// Init brings up the process Relay on the Default hub: it listens, waits for
// a client and installs the relay. It fails with ErrAlreadyInstalled while a
// previous process Relay is still relaying. After a failure (or Shutdown) it
// can be called again to wait for a new client.
func Init(ctx context.Context, opts ...RelayOption) error {
	if IsReady() {
		return ErrAlreadyInstalled
	}
	r := New(Default(), opts...)
	if err := r.Initialize(ctx); err != nil {
		return err
	}
	setSelf(r)
	return nil
}

// Shutdown tears the process Relay down, if any.
func Shutdown() error {
	r := takeSelf()
	if r == nil {
		return nil
	}
	return r.Teardown()
}
