package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUniquenessStore отмечает первые N кандидатов как занятые и считает
// обращения, чтобы проверять число попыток генератора.
type fakeUniquenessStore struct {
	takenTokens  int
	takenNumbers int
	tokenCalls   int
	numberCalls  int
}

func (s *fakeUniquenessStore) ExistsByShareToken(ctx context.Context, token string) (bool, error) {
	s.tokenCalls++
	return s.tokenCalls <= s.takenTokens, nil
}

func (s *fakeUniquenessStore) ExistsByProposalNumber(ctx context.Context, number string) (bool, error) {
	s.numberCalls++
	return s.numberCalls <= s.takenNumbers, nil
}

var shareTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{12}$`)

func TestShareToken_NoCollisionsNoRetries(t *testing.T) {
	store := &fakeUniquenessStore{}
	gen := NewIdentifierGenerator(store)
	ctx := context.Background()

	const iterations = 1000
	seen := make(map[string]struct{}, iterations)
	for i := 0; i < iterations; i++ {
		token, err := gen.ShareToken(ctx)
		require.NoError(t, err)
		assert.Regexp(t, shareTokenPattern, token)
		seen[token] = struct{}{}
	}

	// Свободная база — ровно одна проверка на токен, без повторов.
	assert.Equal(t, iterations, store.tokenCalls)
	assert.Len(t, seen, iterations)
}

func TestShareToken_RetriesWhileTaken(t *testing.T) {
	for taken := 1; taken <= 4; taken++ {
		store := &fakeUniquenessStore{takenTokens: taken}
		gen := NewIdentifierGenerator(store)

		token, err := gen.ShareToken(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, shareTokenPattern, token)
		assert.Equal(t, taken+1, store.tokenCalls, "занято %d: ожидали %d попыток", taken, taken+1)
	}
}

func TestShareToken_FallbackAfterExhaustion(t *testing.T) {
	store := &fakeUniquenessStore{takenTokens: 1000}
	gen := NewIdentifierGenerator(store)

	token, err := gen.ShareToken(context.Background())
	require.NoError(t, err)

	// После пяти неудач берётся запасной вариант из UUID без повторной
	// проверки: это принятый остаточный риск, а не ошибка.
	assert.Equal(t, maxIDAttempts, store.tokenCalls)
	assert.Regexp(t, `^[0-9a-f]{12}$`, token)
}

func TestProposalNumber_Format(t *testing.T) {
	store := &fakeUniquenessStore{}
	gen := NewIdentifierGenerator(store)
	gen.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }

	number, err := gen.ProposalNumber(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^KP-2026-[0-9A-F]{6}$`, number)
	assert.Equal(t, 1, store.numberCalls)
}

func TestProposalNumber_RetriesWhileTaken(t *testing.T) {
	store := &fakeUniquenessStore{takenNumbers: 3}
	gen := NewIdentifierGenerator(store)

	number, err := gen.ProposalNumber(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^KP-\d{4}-[0-9A-F]{6}$`, number)
	assert.Equal(t, 4, store.numberCalls)
}

func TestProposalNumber_FallbackAfterExhaustion(t *testing.T) {
	store := &fakeUniquenessStore{takenNumbers: 1000}
	gen := NewIdentifierGenerator(store)
	gen.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }

	number, err := gen.ProposalNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, maxIDAttempts, store.numberCalls)
	assert.Regexp(t, `^KP-2026-[0-9A-F]{8}$`, number)
}

func TestIdentifiers_BackToBackDistinct(t *testing.T) {
	store := &fakeUniquenessStore{}
	gen := NewIdentifierGenerator(store)
	ctx := context.Background()

	first, err := gen.ShareToken(ctx)
	require.NoError(t, err)
	second, err := gen.ShareToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	firstNumber, err := gen.ProposalNumber(ctx)
	require.NoError(t, err)
	secondNumber, err := gen.ProposalNumber(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, firstNumber, secondNumber)
}
