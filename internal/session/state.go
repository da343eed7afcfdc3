package session

// State is the lifecycle position of a Controller.
type State int

const (
	Idle State = iota
	Ready
	Welcoming
	Running
	Finished
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Welcoming:
		return "welcoming"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
