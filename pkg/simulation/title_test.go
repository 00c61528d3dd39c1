package simulation

import (
	"context"
	"testing"

	"github.com/ethpandaops/projector/internal/testutil"
	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle_Render(t *testing.T) {
	tests := []struct {
		name         string
		title        Title
		expectedText string
		expectedHTML string
	}{
		{
			name:         "no drivers",
			title:        Title{Name: "GDP"},
			expectedText: "(GDP)",
			expectedHTML: "(<b>GDP</b>)",
		},
		{
			name:         "one driver",
			title:        Title{Name: "Tax", Drivers: []string{"GDP"}},
			expectedText: "(Tax according to the GDP)",
			expectedHTML: "(<b>Tax</b> according to the <b>GDP</b>)",
		},
		{
			name:         "several drivers",
			title:        Title{Name: "Tax", Drivers: []string{"GDP", "Population"}},
			expectedText: "(Tax according to the GDP & Population)",
			expectedHTML: "(<b>Tax</b> according to the <b>GDP</b> & <b>Population</b>)",
		},
		{
			name:         "markup in names is escaped",
			title:        Title{Name: "R&D"},
			expectedText: "(R&D)",
			expectedHTML: "(<b>R&amp;D</b>)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedText, tt.title.String())
			assert.Equal(t, tt.expectedHTML, tt.title.HTML())
		})
	}
}

func TestNewTitle_DeduplicatesDrivers(t *testing.T) {
	store := testutil.NewStore().Add(
		testutil.Input(1, "GDP", 100),
		testutil.Input(2, "Population", 10),
		testutil.Calculated(3, "Tax", 2),
		testutil.Calculated(4, "Tax", 1),
		testutil.Calculated(5, "Tax", 2),
	)

	graph, err := dependencies.Load(context.Background(), store, 0, 3)
	require.NoError(t, err)

	group := variables.Group{Name: "Tax", Variants: graph.Variants("Tax")}
	title := NewTitle(group, graph)

	assert.Equal(t, []string{"Population", "GDP"}, title.Drivers)
}
