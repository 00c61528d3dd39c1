package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		v       Variable
		wantErr bool
	}{
		{
			name: "plain input",
			v:    Variable{ID: 1, Name: "GDP", Kind: KindInput, BaseLevel: 100},
		},
		{
			name: "calculated with driver",
			v: Variable{ID: 2, Name: "Tax", Kind: KindCalculated, DriverID: ID(1),
				Coefficients: Coefficients{Linear: Float(0.5)}},
		},
		{
			name:    "input with driver",
			v:       Variable{ID: 3, Name: "GDP", Kind: KindInput, DriverID: ID(1)},
			wantErr: true,
		},
		{
			name:    "input with coefficient",
			v:       Variable{ID: 3, Name: "GDP", Kind: KindInput, Coefficients: Coefficients{Cubic: Float(1)}},
			wantErr: true,
		},
		{
			name:    "input with noise",
			v:       Variable{ID: 3, Name: "GDP", Kind: KindInput, NoisePct: Float(5)},
			wantErr: true,
		},
		{
			name:    "calculated without driver",
			v:       Variable{ID: 4, Name: "Tax", Kind: KindCalculated},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			v:       Variable{ID: 5, Name: "X", Kind: "Other"},
			wantErr: true,
		},
		{
			name:    "missing name",
			v:       Variable{ID: 6, Kind: KindInput},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidVariableDefinition)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGroupByName(t *testing.T) {
	vars := []*Variable{
		{ID: 4, Name: "Tax"},
		{ID: 1, Name: "GDP"},
		{ID: 2, Name: "Tax"},
		nil,
		{ID: 3, Name: "Population"},
	}

	groups := GroupByName(vars)

	require.Len(t, groups, 3)
	assert.Equal(t, "Tax", groups[0].Name)
	assert.Equal(t, []int64{2, 4}, groups[0].IDs())
	assert.Equal(t, "GDP", groups[1].Name)
	assert.Equal(t, "Population", groups[2].Name)
}

func TestYears(t *testing.T) {
	years, err := Years(2027)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024, 2025, 2026, 2027}, years)

	years, err = Years(BaseYear)
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, years)

	_, err = Years(2020)
	assert.ErrorIs(t, err, ErrInvalidTargetYear)
}

func TestVariable_HasNoise(t *testing.T) {
	assert.False(t, (&Variable{}).HasNoise())
	assert.False(t, (&Variable{NoisePct: Float(0)}).HasNoise())
	assert.True(t, (&Variable{NoisePct: Float(2.5)}).HasNoise())
}
