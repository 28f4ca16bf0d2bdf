package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carbonledger/pkg/domain-errors"
)

func TestTargetProgress(t *testing.T) {
	target := &Target{BaselineCO2e: 1000, TargetCO2e: 600}

	tests := []struct {
		name     string
		actual   float64
		expected float64
	}{
		{name: "no movement from baseline", actual: 1000, expected: 0},
		{name: "halfway to target", actual: 800, expected: 50},
		{name: "target reached", actual: 600, expected: 100},
		{name: "emissions grew: clamped at zero", actual: 1200, expected: 0},
		{name: "overachieved: clamped at one hundred", actual: 400, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, err := target.Progress(tt.actual)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, pct)
		})
	}
}

func TestTargetProgressUndefined(t *testing.T) {
	// Baseline equal to target makes the denominator zero; that is an
	// invariant violation, not a silent zero.
	target := &Target{BaselineCO2e: 500, TargetCO2e: 500}
	_, err := target.Progress(400)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestParseTargetType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TargetType
		wantErr  bool
	}{
		{name: "empty defaults to absolute", input: "", expected: TypeAbsolute},
		{name: "absolute", input: "absolute", expected: TypeAbsolute},
		{name: "intensity", input: "intensity", expected: TypeIntensity},
		{name: "unknown is rejected", input: "aspirational", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTargetType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Status
		wantErr  bool
	}{
		{name: "empty defaults to active", input: "", expected: StatusActive},
		{name: "achieved", input: "achieved", expected: StatusAchieved},
		{name: "missed", input: "missed", expected: StatusMissed},
		{name: "revised", input: "revised", expected: StatusRevised},
		{name: "unknown is rejected", input: "paused", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
