package plans

// State is a session's position in the submission pipeline.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingInput    State = "awaiting_input"
	StateGenerating       State = "generating"
	StatePlanReady        State = "plan_ready"
	StateGenerationFailed State = "generation_failed"
	StateExporting        State = "exporting"
	StateExported         State = "exported"
	StateNotifying        State = "notifying"
	StateNotified         State = "notified"
)

// transitions lists the allowed moves. A resubmission always re-enters awaiting_input,
// and a failed export falls back to plan_ready with the plan intact.
var transitions = map[State][]State{
	StateIdle:             {StateAwaitingInput},
	StateAwaitingInput:    {StateGenerating},
	StateGenerating:       {StatePlanReady, StateGenerationFailed},
	StatePlanReady:        {StateExporting, StateAwaitingInput},
	StateGenerationFailed: {StateAwaitingInput},
	StateExporting:        {StateExported, StatePlanReady},
	StateExported:         {StateNotifying, StateExporting, StateAwaitingInput},
	StateNotifying:        {StateNotified, StateExporting, StateAwaitingInput},
	StateNotified:         {StateExporting, StateAwaitingInput},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the session to the given state or returns a *TransitionError.
func (s *Session) Transition(to State) error {
	from := s.State
	if from == "" {
		from = StateIdle
	}
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	s.State = to
	return nil
}

// Busy reports whether an operation is in flight for the session.
func (s State) Busy() bool {
	return s == StateGenerating || s == StateExporting
}
