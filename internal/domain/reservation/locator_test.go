package reservation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func TestGenerateLocator_CharsetAndLength(t *testing.T) {
	code, err := GenerateLocator(context.Background(), neverExists)
	require.NoError(t, err)
	assert.Len(t, code, LocatorLength)
	for _, r := range code {
		assert.Contains(t, locatorAlphabet, string(r))
	}
}

func TestGenerateLocator_StopsAtFirstFreeCode(t *testing.T) {
	probes := 0
	exists := func(ctx context.Context, code string) (bool, error) {
		probes++
		return false, nil
	}

	_, err := GenerateLocator(context.Background(), exists)
	require.NoError(t, err)
	assert.Equal(t, 1, probes)
}

func TestGenerateLocator_FallsBackToExtendedLength(t *testing.T) {
	probes := 0
	alwaysTaken := func(ctx context.Context, code string) (bool, error) {
		probes++
		assert.Len(t, code, LocatorLength)
		return true, nil
	}

	code, err := GenerateLocator(context.Background(), alwaysTaken)
	require.NoError(t, err)
	assert.Equal(t, locatorProbes, probes)
	assert.Len(t, code, ExtendedLocatorLength)
}

func TestGenerateLocator_ProbeErrorPropagates(t *testing.T) {
	probeErr := errors.New("connection refused")
	failing := func(ctx context.Context, code string) (bool, error) {
		return false, probeErr
	}

	_, err := GenerateLocator(context.Background(), failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, probeErr)
}

func TestGenerateLocator_NoDuplicatesOverManyDraws(t *testing.T) {
	const draws = 10000
	seen := make(map[string]struct{}, draws)
	duplicates := 0

	for i := 0; i < draws; i++ {
		code, err := GenerateLocator(context.Background(), neverExists)
		require.NoError(t, err)
		if _, ok := seen[code]; ok {
			duplicates++
		}
		seen[code] = struct{}{}
	}

	// The 36^6 space makes collisions over 10k draws overwhelmingly
	// unlikely; a couple would still pass in the real system because the
	// uniqueness probe filters them.
	assert.LessOrEqual(t, duplicates, 2)
}

func TestRandomLocator_UsesFullAlphabet(t *testing.T) {
	counts := make(map[rune]int)
	for i := 0; i < 5000; i++ {
		for _, r := range randomLocator(LocatorLength) {
			counts[r]++
		}
	}
	for _, r := range locatorAlphabet {
		assert.Greater(t, counts[r], 0, "character %q never drawn", string(r))
	}
	assert.Len(t, counts, len(locatorAlphabet))
}

func TestSeatConflictError_ListsEveryPair(t *testing.T) {
	err := &SeatConflictError{Conflicts: []SeatRef{
		{TripID: 1, SeatNumber: 12},
		{TripID: 1, SeatNumber: 13},
	}}
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "trip 1 seat 12"))
	assert.True(t, strings.Contains(msg, "trip 1 seat 13"))
}

func TestAmountMismatchError_NamesExpectedTotal(t *testing.T) {
	err := &AmountMismatchError{Expected: 300, Got: 250}
	assert.Contains(t, err.Error(), "300.00")
	assert.Contains(t, err.Error(), "250.00")
}

func TestAmountMatches(t *testing.T) {
	tests := []struct {
		name  string
		got   float64
		total float64
		want  bool
	}{
		{"exact amount", 200.00, 200.00, true},
		{"sub-cent float noise", 299.90000000001, 299.90, true},
		{"accumulated float error", 0.1 + 0.2, 0.3, true},
		{"one cent short", 199.99, 200.00, false},
		{"one cent over", 200.01, 200.00, false},
		{"wrong amount", 250.00, 300.00, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountMatches(tt.got, tt.total))
		})
	}
}
