package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errRedisDown = errors.New("redis down")

func TestReason(t *testing.T) {
	t.Run("Returns the reason of a wrapped sentinel", func(t *testing.T) {
		// Given: a sentinel wrapped twice on its way up
		err := fmt.Errorf("failed to make move: %w", fmt.Errorf("room game-1: %w", ErrNotYourTurn))

		// When: translating it for the client
		reason := Reason(err)

		// Then: the sentinel's reason is returned
		assert.Equal(t, "Not your turn", reason)
	})

	t.Run("Reports unknown errors as internal", func(t *testing.T) {
		// When: translating an error outside the taxonomy
		reason := Reason(fmt.Errorf("failed to save room: %w", errRedisDown))

		// Then: no internals leak to the client
		assert.Equal(t, "Internal error", reason)
	})

	t.Run("Every taxonomy error has its own reason", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, r := range reasons {
			assert.False(t, seen[r.reason], "duplicate reason %q", r.reason)
			seen[r.reason] = true
			assert.Equal(t, r.reason, Reason(r.err))
		}
	})
}
