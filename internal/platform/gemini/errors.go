package gemini

import (
	"fmt"

	"github.com/phrazzld/memoria/internal/domain"
)

// ErrNoText is returned when a text or docx document holds no readable text.
var ErrNoText = fmt.Errorf("%w: document contains no text", domain.ErrValidation)
