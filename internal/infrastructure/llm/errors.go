package llm

import (
	"errors"
	"fmt"
)

// ProviderError reports a failed summarization call. Retriable marks
// rate-limit, server-side, and transport failures; everything else is
// terminal.
type ProviderError struct {
	Status    int
	Message   string
	Retriable bool
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

// IsRetriable reports whether err is worth another attempt.
func IsRetriable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retriable
	}
	return false
}
