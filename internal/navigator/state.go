package navigator

import "fmt"

// State is where the session currently is.
type State int

const (
	LoggedOut State = iota
	LoggingIn
	ModuleSelection
	AssignmentDiscovery
	DetailFetch
	ViewSelection
	Exited
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "LoggedOut"
	case LoggingIn:
		return "LoggingIn"
	case ModuleSelection:
		return "ModuleSelection"
	case AssignmentDiscovery:
		return "AssignmentDiscovery"
	case DetailFetch:
		return "DetailFetch"
	case ViewSelection:
		return "ViewSelection"
	case Exited:
		return "Exited"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
