package interpolation

import (
	"testing"

	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchors(t *testing.T) {
	overrides := []variables.Override{
		{VariableID: 1, Year: 2030, Value: variables.Float(150)},
		{VariableID: 1, Year: 2025, Value: variables.Float(120)},
		{VariableID: 1, Year: 2026, Value: nil},
		{VariableID: 1, Year: 2023, Value: variables.Float(99)},
	}

	anchors, shadowed := Anchors(100, overrides)

	assert.Equal(t, 1, shadowed)
	assert.Equal(t, []Anchor{
		{Year: 2023, Value: 100},
		{Year: 2025, Value: 120},
		{Year: 2030, Value: 150},
	}, anchors)
}

func TestSample_EndToEndExample(t *testing.T) {
	anchors, _ := Anchors(100, []variables.Override{
		{VariableID: 1, Year: 2025, Value: variables.Float(120)},
	})

	series, err := Sample(anchors, 2027)
	require.NoError(t, err)
	require.Len(t, series, 5)

	assert.InDelta(t, 100, series[0], 1e-9)
	assert.InDelta(t, 120, series[2], 1e-9)

	for i := 1; i < len(series); i++ {
		assert.Greater(t, series[i], series[i-1], "year %d", variables.BaseYear+i)
	}
}

func TestSample_RoundTrip(t *testing.T) {
	anchors := []Anchor{
		{Year: 2023, Value: 50},
		{Year: 2026, Value: 80},
		{Year: 2028, Value: 65},
		{Year: 2035, Value: 140},
	}

	series, err := Sample(anchors, 2035)
	require.NoError(t, err)

	for _, a := range anchors {
		assert.InDelta(t, a.Value, series[a.Year-variables.BaseYear], 1e-9, "anchor %d", a.Year)
	}
}

func TestSample_MonotoneWithoutOvershoot(t *testing.T) {
	anchors := []Anchor{
		{Year: 2023, Value: 100},
		{Year: 2026, Value: 110},
		{Year: 2030, Value: 200},
		{Year: 2035, Value: 205},
	}

	series, err := Sample(anchors, 2035)
	require.NoError(t, err)

	for i := 1; i < len(series); i++ {
		assert.GreaterOrEqual(t, series[i], series[i-1], "year %d", variables.BaseYear+i)
	}

	for k := 1; k < len(anchors); k++ {
		lo, hi := anchors[k-1], anchors[k]
		for y := lo.Year; y <= hi.Year; y++ {
			v := series[y-variables.BaseYear]
			assert.GreaterOrEqual(t, v, lo.Value-1e-9)
			assert.LessOrEqual(t, v, hi.Value+1e-9)
		}
	}
}

func TestSample_PlateauStaysFlat(t *testing.T) {
	anchors := []Anchor{
		{Year: 2023, Value: 10},
		{Year: 2025, Value: 10},
		{Year: 2027, Value: 20},
	}

	series, err := Sample(anchors, 2027)
	require.NoError(t, err)

	assert.InDelta(t, 10, series[1], 1e-9)
	assert.Greater(t, series[3], 10.0)
	assert.Less(t, series[3], 20.0)
}

func TestSample_ExtrapolatesPastLastAnchor(t *testing.T) {
	anchors := []Anchor{
		{Year: 2023, Value: 100},
		{Year: 2025, Value: 120},
	}

	series, err := Sample(anchors, 2027)
	require.NoError(t, err)

	// Two anchors fit a straight line, which carries on past 2025.
	assert.InDelta(t, 110, series[1], 1e-9)
	assert.InDelta(t, 130, series[3], 1e-9)
	assert.InDelta(t, 140, series[4], 1e-9)
}

func TestSample_Errors(t *testing.T) {
	tests := []struct {
		name    string
		anchors []Anchor
		target  int
		wantErr error
	}{
		{
			name:    "only the base year",
			anchors: []Anchor{{Year: 2023, Value: 1}},
			target:  2030,
			wantErr: variables.ErrInsufficientAnchors,
		},
		{
			name:    "no anchors",
			anchors: nil,
			target:  2030,
			wantErr: variables.ErrInsufficientAnchors,
		},
		{
			name:    "target before base year",
			anchors: []Anchor{{Year: 2023, Value: 1}, {Year: 2024, Value: 2}},
			target:  2022,
			wantErr: variables.ErrInvalidTargetYear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sample(tt.anchors, tt.target)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFit_RejectsUnsortedAnchors(t *testing.T) {
	_, err := Fit([]Anchor{{Year: 2025, Value: 1}, {Year: 2023, Value: 2}})
	require.Error(t, err)
}
