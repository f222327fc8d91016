package studysync

import "github.com/phrazzld/memoria/internal/domain"

// State is the controller's position in its state machine.
type State int

// Controller states.
const (
	// StateNoActiveSet means no set is selected and there are no local cards.
	StateNoActiveSet State = iota
	// StateLoadingCards means a set was selected and its cards are being fetched.
	StateLoadingCards
	// StateActiveSet means the active set's cards are loaded and idle.
	StateActiveSet
	// StateMutating means the active set has card operations in flight.
	StateMutating
)

func (s State) String() string {
	switch s {
	case StateNoActiveSet:
		return "no_active_set"
	case StateLoadingCards:
		return "loading_cards"
	case StateActiveSet:
		return "active_set"
	case StateMutating:
		return "mutating"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the controller's state.
type Snapshot struct {
	State     State
	ActiveSet *domain.StudySet // metadata only; nil without an active set
	Cards     []domain.Flashcard
	Sets      []domain.StudySet
	Pending   int
}
