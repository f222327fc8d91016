package studysync

import (
	"errors"
	"fmt"

	"github.com/phrazzld/memoria/internal/domain"
)

var (
	// ErrNoActiveSet is returned by card operations when no set is active or
	// its cards are still loading.
	ErrNoActiveSet = fmt.Errorf("%w: no active study set", domain.ErrValidation)

	// ErrCardNotInSet is returned when a card operation names a card the
	// active set does not hold.
	ErrCardNotInSet = fmt.Errorf("%w: card is not in the active study set", domain.ErrValidation)

	// ErrNoGenerator is returned by GenerateSet when the controller has no
	// generation client.
	ErrNoGenerator = errors.New("no generation client configured")
)
