package evaluator

import (
	"context"
	"testing"

	"github.com/ethpandaops/projector/internal/testutil"
	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/formula"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T, store *testutil.Store, roots ...int64) *Evaluator {
	t.Helper()

	graph, err := dependencies.Load(context.Background(), store, 0, roots...)
	require.NoError(t, err)

	return New(logrus.New(), graph, 0)
}

func TestEvaluate_Input(t *testing.T) {
	e := newTestEvaluator(t, testutil.GDPTax(), 1)

	series, err := e.Evaluate(context.Background(), 1, 2027, formula.None{})
	require.NoError(t, err)
	require.Len(t, series, 5)

	assert.InDelta(t, 100, series[0], 1e-9)
	assert.InDelta(t, 120, series[2], 1e-9)
	assert.Greater(t, series[1], 100.0)
	assert.Less(t, series[1], 120.0)
	assert.Greater(t, series[3], series[2])
	assert.Greater(t, series[4], series[3])
}

func TestEvaluate_GDPTax(t *testing.T) {
	e := newTestEvaluator(t, testutil.GDPTax(), 2)
	ctx := context.Background()

	gdp, err := e.Evaluate(ctx, 1, 2027, formula.None{})
	require.NoError(t, err)

	tax, err := e.Evaluate(ctx, 2, 2027, formula.None{})
	require.NoError(t, err)
	require.Len(t, tax, 5)

	assert.InDelta(t, 100, tax[0], 1e-12)
	for i := 1; i < len(tax); i++ {
		assert.Greater(t, tax[i], tax[i-1], "year %d", variables.BaseYear+i)

		want := tax[i-1] * (1 + 0.5*formula.Rate(gdp[i-1], gdp[i]))
		assert.InDelta(t, want, tax[i], 1e-9)
	}

	again, err := e.Evaluate(ctx, 2, 2027, formula.None{})
	require.NoError(t, err)
	assert.Equal(t, tax, again)
}

func TestEvaluate_AveragesDriverVariants(t *testing.T) {
	store := testutil.NewStore().
		Add(
			testutil.Input(1, "GDP", 100),
			testutil.Calculated(2, "Tax", 1, testutil.WithLinear(0.5)),
			testutil.Calculated(3, "Tax", 1, testutil.WithLinear(1.5)),
			testutil.Calculated(4, "Revenue", 2, testutil.WithLinear(1), testutil.WithBaseLevel(40)),
		).
		Override(1, 2026, 130)

	e := newTestEvaluator(t, store, 4)
	ctx := context.Background()

	low, err := e.Evaluate(ctx, 2, 2026, formula.None{})
	require.NoError(t, err)
	high, err := e.Evaluate(ctx, 3, 2026, formula.None{})
	require.NoError(t, err)

	response := formula.Response{Coefficients: variables.Coefficients{Linear: variables.Float(1)}}
	fromLow, err := response.Project(40, low, formula.None{})
	require.NoError(t, err)
	fromHigh, err := response.Project(40, high, formula.None{})
	require.NoError(t, err)

	revenue, err := e.Evaluate(ctx, 4, 2026, formula.None{})
	require.NoError(t, err)
	require.Len(t, revenue, 4)

	for i := range revenue {
		assert.InDelta(t, (fromLow[i]+fromHigh[i])/2, revenue[i], 1e-9)
	}
}

func TestEvaluate_Noise(t *testing.T) {
	store := testutil.NewStore().
		Add(
			testutil.Input(1, "GDP", 100),
			testutil.Calculated(2, "Tax", 1, testutil.WithLinear(1), testutil.WithNoise(10)),
		).
		Override(1, 2024, 110)

	e := newTestEvaluator(t, store, 2)

	series, err := e.Evaluate(context.Background(), 2, 2024, formula.Sigmas(1))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 100, series[0], 1e-12)
	assert.InDelta(t, 121, series[1], 1e-9)

	// A nil source means no noise.
	series, err = e.Evaluate(context.Background(), 2, 2024, nil)
	require.NoError(t, err)
	assert.InDelta(t, 110, series[1], 1e-9)
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name          string
		store         *testutil.Store
		id            int64
		target        int
		expectedError error
	}{
		{
			name:          "input with a single anchor",
			store:         testutil.NewStore().Add(testutil.Input(1, "GDP", 100)),
			id:            1,
			target:        2027,
			expectedError: variables.ErrInsufficientAnchors,
		},
		{
			name:          "only placeholder overrides",
			store:         testutil.NewStore().Add(testutil.Input(1, "GDP", 100)).Placeholder(1, 2025),
			id:            1,
			target:        2027,
			expectedError: variables.ErrInsufficientAnchors,
		},
		{
			name: "insufficient anchors propagate through the driver",
			store: testutil.NewStore().Add(
				testutil.Input(1, "GDP", 100),
				testutil.Calculated(2, "Tax", 1, testutil.WithLinear(1)),
			),
			id:            2,
			target:        2027,
			expectedError: variables.ErrInsufficientAnchors,
		},
		{
			name:          "target before the base year",
			store:         testutil.GDPTax(),
			id:            2,
			target:        2020,
			expectedError: variables.ErrInvalidTargetYear,
		},
		{
			name:          "zero driver value",
			store:         testutil.GDPTax().Override(1, 2024, 0),
			id:            2,
			target:        2027,
			expectedError: variables.ErrNonFiniteValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEvaluator(t, tt.store, tt.id)

			_, err := e.Evaluate(context.Background(), tt.id, tt.target, formula.None{})
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestEvaluate_NotLoaded(t *testing.T) {
	e := newTestEvaluator(t, testutil.GDPTax(), 1)

	_, err := e.Evaluate(context.Background(), 2, 2027, formula.None{})
	assert.ErrorIs(t, err, variables.ErrVariableNotFound)
	assert.ErrorIs(t, err, dependencies.ErrNodeNotLoaded)
}

func TestEvaluate_Cancelled(t *testing.T) {
	e := newTestEvaluator(t, testutil.GDPTax(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, 2, 2027, formula.None{})
	assert.ErrorIs(t, err, context.Canceled)
}

// cyclicGraph hands out a driver loop the loader would never build
type cyclicGraph struct {
	nodes map[int64]*dependencies.Node
}

func (g *cyclicGraph) GetNode(id int64) (*dependencies.Node, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, dependencies.ErrNodeNotLoaded
	}

	return node, nil
}

func (g *cyclicGraph) Variants(name string) []*variables.Variable {
	var out []*variables.Variable
	for _, node := range g.nodes {
		if node.Variable.Name == name {
			out = append(out, node.Variable)
		}
	}

	return out
}

func (g *cyclicGraph) GetDependencies(int64) []int64    { return nil }
func (g *cyclicGraph) GetDependents(int64) []int64      { return nil }
func (g *cyclicGraph) GetAllDependencies(int64) []int64 { return nil }
func (g *cyclicGraph) IsPathBetween(int64, int64) bool  { return false }

func TestEvaluate_CycleGuard(t *testing.T) {
	graph := &cyclicGraph{nodes: map[int64]*dependencies.Node{
		1: {Variable: testutil.Calculated(1, "A", 2), DriverName: "B"},
		2: {Variable: testutil.Calculated(2, "B", 1), DriverName: "A"},
	}}

	_, err := New(logrus.New(), graph, 0).Evaluate(context.Background(), 1, 2027, formula.None{})
	assert.ErrorIs(t, err, variables.ErrCyclicDependency)

	_, err = New(logrus.New(), graph, 5).Evaluate(context.Background(), 1, 2027, formula.None{})
	assert.ErrorIs(t, err, variables.ErrCyclicDependency)
}

func TestEvaluate_MaxDepth(t *testing.T) {
	store := testutil.NewStore().
		Add(
			testutil.Input(1, "A", 100),
			testutil.Calculated(2, "B", 1),
			testutil.Calculated(3, "C", 2),
		).
		Override(1, 2025, 120)

	graph, err := dependencies.Load(context.Background(), store, 0, 3)
	require.NoError(t, err)

	_, err = New(logrus.New(), graph, 1).Evaluate(context.Background(), 3, 2027, formula.None{})
	assert.ErrorIs(t, err, variables.ErrMaxDepthExceeded)

	_, err = New(logrus.New(), graph, 2).Evaluate(context.Background(), 3, 2027, formula.None{})
	assert.NoError(t, err)
}

func TestMean(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Equal(t, []float64{2, 3}, Mean([][]float64{{1, 2}, {3, 4}}))
	assert.Equal(t, []float64{5}, Mean([][]float64{{5}}))
}
