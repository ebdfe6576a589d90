package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "proposals_share_token_key"}

	constraint, ok := UniqueViolation(pqErr)
	assert.True(t, ok)
	assert.Equal(t, "proposals_share_token_key", constraint)

	// Обёрнутая ошибка тоже распознаётся.
	constraint, ok = UniqueViolation(fmt.Errorf("insert: %w", pqErr))
	assert.True(t, ok)
	assert.Equal(t, "proposals_share_token_key", constraint)
}

func TestUniqueViolation_OtherErrors(t *testing.T) {
	_, ok := UniqueViolation(errors.New("обычная ошибка"))
	assert.False(t, ok)

	_, ok = UniqueViolation(&pq.Error{Code: "23503", Constraint: "proposal_items_proposal_id_fkey"})
	assert.False(t, ok)

	_, ok = UniqueViolation(nil)
	assert.False(t, ok)
}
