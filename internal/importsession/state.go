package importsession

// Status is the lifecycle position of an import.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusSaving
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusSaving:
		return "saving"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage names the operation that put a session into StatusFailed.
type Stage string

const (
	StageNone  Stage = ""
	StageFetch Stage = "fetch"
)

// State is Status plus the failure stage. Stage is StageNone unless Status is StatusFailed.
type State struct {
	Status Status `json:"status"`
	Stage  Stage  `json:"stage,omitempty"`
}

func (s State) String() string {
	if s.Status == StatusFailed && s.Stage != StageNone {
		return s.Status.String() + "(" + string(s.Stage) + ")"
	}
	return s.Status.String()
}

// MarshalText renders the state as e.g. "loaded" or "failed(fetch)".
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type event int

const (
	eventStart event = iota
	eventFetchSucceeded
	eventFetchFailed
	eventBeginCommit
	eventCommitSucceeded
	eventCommitFailed
)

var eventNames = map[event]string{
	eventStart:           "start a fetch",
	eventFetchSucceeded:  "apply a fetch result",
	eventFetchFailed:     "apply a fetch failure",
	eventBeginCommit:     "begin a commit",
	eventCommitSucceeded: "apply a commit result",
	eventCommitFailed:    "apply a commit failure",
}

type transitionKey struct {
	from  Status
	event event
}

// transitions is the whole state machine except reset, which is legal from anywhere.
var transitions = map[transitionKey]State{
	{StatusIdle, eventStart}:             {Status: StatusLoading},
	{StatusFailed, eventStart}:           {Status: StatusLoading},
	{StatusLoading, eventFetchSucceeded}: {Status: StatusLoaded},
	{StatusLoading, eventFetchFailed}:    {Status: StatusFailed, Stage: StageFetch},
	{StatusLoaded, eventBeginCommit}:     {Status: StatusSaving},
	{StatusSaving, eventCommitSucceeded}: {Status: StatusCompleted},
	{StatusSaving, eventCommitFailed}:    {Status: StatusLoaded},
}

func transition(from State, ev event) (State, error) {
	next, ok := transitions[transitionKey{from: from.Status, event: ev}]
	if !ok {
		return from, &TransitionError{Action: eventNames[ev], From: from}
	}
	return next, nil
}
