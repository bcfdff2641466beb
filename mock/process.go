package mock

import "context"

// process is a command started by WslLaunch.
type process struct {
	ctx    context.Context
	cancel context.CancelFunc

	done     chan struct{}
	exitCode uint32
}

func newProcess() *process {
	ctx, cancel := context.WithCancel(context.Background())
	return &process{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Kill interrupts the command. It implements distrostate.Process.
func (p *process) Kill() {
	p.cancel()
}

// finish records the exit code and wakes up the waiters.
func (p *process) finish(exitCode uint32) {
	p.exitCode = exitCode
	p.cancel()
	close(p.done)
}
