package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")

	var err error = NewValidationError("reviewHistory", "must not be empty")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "reviewHistory")

	err = fmt.Errorf("commit: %w", &ReferentialError{ItemID: "k-2"})
	assert.ErrorIs(t, err, ErrReferential)
	var refErr *ReferentialError
	assert.True(t, errors.As(err, &refErr))
	assert.Equal(t, "k-2", refErr.ItemID)

	err = &PersistenceError{ItemID: "k-3", Operation: "upsert progress", Err: cause}
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)

	err = &TotalFailure{Failures: []ItemFailure{
		{ItemID: "a", Err: &ReferentialError{ItemID: "a"}},
		{ItemID: "b", Err: &ReferentialError{ItemID: "b"}},
		{ItemID: "c", Err: &ReferentialError{ItemID: "c"}},
		{ItemID: "d", Err: &ReferentialError{ItemID: "d"}},
	}}
	assert.ErrorIs(t, err, ErrTotalFailure)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "all 4 reviews failed")
	assert.Contains(t, err.Error(), "and 1 more")
}
