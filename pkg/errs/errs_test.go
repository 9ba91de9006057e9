package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = NotFound(ErrOrderNotFound, "order not found")

func TestErrorMatching(t *testing.T) {
	t.Run("Copies with params match sentinel", func(t *testing.T) {
		err := errSentinel.WithParam("order_id", 42)

		assert.ErrorIs(t, err, errSentinel)
		assert.Equal(t, 42, err.Params["order_id"])
		assert.Nil(t, errSentinel.Params)
	})

	t.Run("Wrapped chain keeps kind", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", errSentinel.Wrap(errors.New("no rows")))

		assert.ErrorIs(t, err, errSentinel)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Contains(t, err.Error(), "no rows")
	})

	t.Run("Different codes do not match", func(t *testing.T) {
		other := NotFound(ErrPaymentNotFound, "payment not found")
		assert.False(t, errors.Is(other, errSentinel))
	})

	t.Run("Plain errors are internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	})
}
