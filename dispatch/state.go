package dispatch

// State is a step of a report run. Runs only move forward; any failure
// ends in Aborted.
type State int

const (
	Start State = iota
	ConfigLoaded
	DataRetrieved
	Rendered
	Dispatched
	Done
	Aborted
)

var stateNames = [...]string{
	Start:         "start",
	ConfigLoaded:  "config_loaded",
	DataRetrieved: "data_retrieved",
	Rendered:      "rendered",
	Dispatched:    "dispatched",
	Done:          "done",
	Aborted:       "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Done || s == Aborted
}
