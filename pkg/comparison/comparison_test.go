package comparison

import (
	"context"
	"errors"
	"testing"

	"github.com/ethpandaops/projector/internal/testutil"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(store *testutil.Store) *Assembler {
	orchestrator := simulation.NewOrchestrator(logrus.New(), store, &simulation.Config{
		Runs:        10,
		MaxRuns:     100,
		Concurrency: 2,
	})

	return NewAssembler(logrus.New(), store, orchestrator)
}

func TestCompare_GDPTax(t *testing.T) {
	a := newTestAssembler(testutil.GDPTax())

	c, err := a.Compare(context.Background(), 1, 2, 2027, 5)
	require.NoError(t, err)

	assert.Equal(t, []int{2023, 2024, 2025, 2026, 2027}, c.Years)
	assert.Equal(t, "GDP", c.First.Name)
	assert.Equal(t, "Tax", c.Second.Name)
	assert.Equal(t, "(GDP) VS (Tax according to the GDP)", c.Title())
	assert.Equal(t, "(<b>GDP</b>) VS (<b>Tax</b> according to the <b>GDP</b>)", c.TitleHTML())

	for _, s := range []Series{c.First, c.Second} {
		require.Len(t, s.Mean, len(c.Years))
		require.Len(t, s.Upper, len(c.Years))
		require.Len(t, s.Lower, len(c.Years))

		for i := range c.Years {
			assert.InDelta(t, s.Mean[i]+s.StdDev[i], s.Upper[i], 1e-12)
			assert.InDelta(t, s.Mean[i]-s.StdDev[i], s.Lower[i], 1e-12)
		}
	}

	assert.InDelta(t, 120, c.First.Mean[2], 1e-9)
	assert.InDelta(t, 100, c.Second.Mean[0], 1e-9)
}

func TestCompare_SameVariable(t *testing.T) {
	a := newTestAssembler(testutil.GDPTax())

	c, err := a.Compare(context.Background(), 2, 2, 2027, 5)
	require.NoError(t, err)
	assert.Equal(t, c.First.Mean, c.Second.Mean)
}

func TestCompare_AllOrNothing(t *testing.T) {
	tests := []struct {
		name          string
		first, second int64
		target        int
		expectedError error
	}{
		{name: "first missing", first: 9, second: 2, target: 2027, expectedError: variables.ErrVariableNotFound},
		{name: "second missing", first: 1, second: 9, target: 2027, expectedError: variables.ErrVariableNotFound},
		{name: "bad target year", first: 1, second: 2, target: 2000, expectedError: variables.ErrInvalidTargetYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssembler(testutil.GDPTax())

			c, err := a.Compare(context.Background(), tt.first, tt.second, tt.target, 5)
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, c)
		})
	}
}

type failingSimulator struct {
	failID int64
	err    error
}

func (f *failingSimulator) Simulate(_ context.Context, id int64, targetYear, runs int) (*simulation.Result, error) {
	if id == f.failID {
		return nil, f.err
	}

	years, _ := variables.Years(targetYear)

	return &simulation.Result{
		VariableID: id,
		Title:      simulation.Title{Name: "ok"},
		Years:      years,
		Mean:       make([]float64, len(years)),
		StdDev:     make([]float64, len(years)),
		Runs:       runs,
		Completed:  runs,
	}, nil
}

func TestCompare_PropagatesSimulatorFailure(t *testing.T) {
	boom := errors.New("boom")
	a := NewAssembler(logrus.New(), testutil.GDPTax(), &failingSimulator{failID: 2, err: boom})

	_, err := a.Compare(context.Background(), 1, 2, 2027, 5)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "second variable 2")
}

func TestCompareConfigured(t *testing.T) {
	c, err := newTestAssembler(testutil.GDPTax()).CompareConfigured(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.Len(t, c.Years, 5)

	store := testutil.NewStore().Add(testutil.Input(1, "GDP", 100)).Override(1, 2025, 120)
	_, err = newTestAssembler(store).CompareConfigured(context.Background(), 1, 1, 5)
	assert.ErrorIs(t, err, variables.ErrTargetYearNotConfigured)
}

func TestDefaultPair(t *testing.T) {
	tests := []struct {
		name           string
		store          *testutil.Store
		expectedFirst  int64
		expectedSecond int64
		expectedError  error
	}{
		{
			name:           "first two distinct names",
			store:          testutil.GDPTax().Add(testutil.Input(3, "Population", 10)),
			expectedFirst:  1,
			expectedSecond: 2,
		},
		{
			name: "lowest id variant of each name",
			store: testutil.NewStore().Add(
				testutil.Input(4, "GDP", 100),
				testutil.Input(2, "GDP", 90),
				testutil.Calculated(7, "Tax", 2),
				testutil.Calculated(5, "Tax", 4),
			),
			expectedFirst:  2,
			expectedSecond: 5,
		},
		{
			name:          "a single name",
			store:         testutil.NewStore().Add(testutil.Input(1, "GDP", 100), testutil.Input(2, "GDP", 90)),
			expectedError: ErrNotEnoughVariables,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second, err := newTestAssembler(tt.store).DefaultPair(context.Background())

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedFirst, first)
			assert.Equal(t, tt.expectedSecond, second)
		})
	}
}
