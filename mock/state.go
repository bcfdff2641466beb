package mock

import "fmt"

// State is the state of a distro, as `wsl.exe -l -v` would show it.
type State int

// States the mock can be in. A distro that is being installed or
// uninstalled is never observable, since both happen under a lock.
const (
	NotRegistered State = iota
	Stopped
	Running
)

func (s State) String() string {
	switch s {
	case NotRegistered:
		return "NotRegistered"
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	}

	return fmt.Sprintf("Unknown state %d", s)
}

// DistroState reports whether a distro is registered and, if so, whether any
// process launched in it is still alive. Interactive sessions leave it running.
func (b *Backend) DistroState(distroName string) State {
	_, key := b.findDistroKey(distroName)
	if key == nil {
		return NotRegistered
	}

	if key.state.IsRunning() {
		return Running
	}

	return Stopped
}
