package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethpandaops/projector/internal/testutil"
	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, store *testutil.Store) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	orchestrator := simulation.NewOrchestrator(log, store, &simulation.Config{
		Runs:          10,
		MaxRuns:       100,
		Concurrency:   2,
		MaxTargetYear: 2100,
	})

	server := NewServer(store, orchestrator, comparison.NewAssembler(log, store, orchestrator), log)

	app := fiber.New()
	server.Register(app)

	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte, http.Header) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, http.NoBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body, resp.Header
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))

	return out
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		store      *testutil.Store
		target     string
		wantStatus int
	}{
		{name: "list variables", store: testutil.GDPTax(), target: "/variables", wantStatus: fiber.StatusOK},
		{name: "invalid kind", store: testutil.GDPTax(), target: "/variables?kind=Other", wantStatus: fiber.StatusBadRequest},
		{name: "get variable", store: testutil.GDPTax(), target: "/variables/2", wantStatus: fiber.StatusOK},
		{name: "malformed id", store: testutil.GDPTax(), target: "/variables/tax", wantStatus: fiber.StatusBadRequest},
		{name: "zero id", store: testutil.GDPTax(), target: "/variables/0", wantStatus: fiber.StatusBadRequest},
		{name: "unknown variable", store: testutil.GDPTax(), target: "/variables/999", wantStatus: fiber.StatusNotFound},
		{name: "unknown variable series", store: testutil.GDPTax(), target: "/variables/999/series", wantStatus: fiber.StatusNotFound},
		{name: "invalid noise", store: testutil.GDPTax(), target: "/variables/1/series?noise=maybe", wantStatus: fiber.StatusBadRequest},
		{name: "invalid target year", store: testutil.GDPTax(), target: "/variables/1/series?targetYear=2020", wantStatus: fiber.StatusBadRequest},
		{name: "target year beyond the horizon", store: testutil.GDPTax(), target: "/variables/1/series?targetYear=999999", wantStatus: fiber.StatusBadRequest},
		{name: "simulation beyond the horizon", store: testutil.GDPTax(), target: "/variables/2/simulation?targetYear=999999", wantStatus: fiber.StatusBadRequest},
		{
			name:       "target year not configured",
			store:      testutil.NewStore().Add(testutil.Input(1, "GDP", 100)).Override(1, 2025, 120),
			target:     "/variables/1/series",
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{name: "malformed runs", store: testutil.GDPTax(), target: "/variables/2/simulation?runs=many", wantStatus: fiber.StatusBadRequest},
		{name: "negative runs", store: testutil.GDPTax(), target: "/variables/2/simulation?runs=-1", wantStatus: fiber.StatusBadRequest},
		{name: "runs above the limit", store: testutil.GDPTax(), target: "/variables/2/simulation?runs=101", wantStatus: fiber.StatusBadRequest},
		{
			name: "cyclic drivers",
			store: testutil.NewStore().
				Add(testutil.Calculated(1, "A", 2), testutil.Calculated(2, "B", 1)).
				WithTargetYear(2027),
			target:     "/variables/1/simulation",
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{
			name:       "every run fails",
			store:      testutil.GDPTax().Override(1, 2024, 0),
			target:     "/variables/2/simulation?runs=2",
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{name: "one sided comparison", store: testutil.GDPTax(), target: "/comparison?first=1", wantStatus: fiber.StatusBadRequest},
		{
			name:       "nothing to compare",
			store:      testutil.NewStore().Add(testutil.Input(1, "GDP", 100)).WithTargetYear(2027),
			target:     "/comparison",
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{name: "comparison with unknown side", store: testutil.GDPTax(), target: "/comparison?first=1&second=999", wantStatus: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, newTestApp(t, tt.store), tt.target)
			assert.Equal(t, tt.wantStatus, status, string(body))
		})
	}
}

func TestListVariables(t *testing.T) {
	store := testutil.GDPTax().Add(testutil.Calculated(3, "Tax", 1, testutil.WithLinear(1.5)))
	app := newTestApp(t, store)

	status, body, _ := get(t, app, "/variables")
	require.Equal(t, fiber.StatusOK, status)

	response := decode[VariablesResponse](t, body)
	require.Equal(t, 2, response.Total)
	assert.Equal(t, "GDP", response.Variables[0].Name)
	assert.Equal(t, "Tax", response.Variables[1].Name)
	require.Len(t, response.Variables[1].Variants, 2)
	assert.Equal(t, int64(2), response.Variables[1].Variants[0].ID)
	assert.Equal(t, int64(3), response.Variables[1].Variants[1].ID)

	status, body, _ = get(t, app, "/variables?kind=Input")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, decode[VariablesResponse](t, body).Total)
}

func TestGetSeries(t *testing.T) {
	app := newTestApp(t, testutil.GDPTax())

	status, body, _ := get(t, app, "/variables/1/series?noise=false")
	require.Equal(t, fiber.StatusOK, status)

	response := decode[SeriesResponse](t, body)
	assert.False(t, response.Noise)
	assert.Equal(t, []int{2023, 2024, 2025, 2026, 2027}, response.Years)
	require.Len(t, response.Values, 5)
	assert.InDelta(t, 100, response.Values[0], 1e-9)
	assert.InDelta(t, 120, response.Values[2], 1e-9)

	status, body, _ = get(t, app, "/variables/2/series?noise=false&targetYear=2025")
	require.Equal(t, fiber.StatusOK, status)

	tax := decode[SeriesResponse](t, body)
	assert.Equal(t, []int{2023, 2024, 2025}, tax.Years)
	assert.Len(t, tax.Values, 3)
}

func TestGetSimulation(t *testing.T) {
	app := newTestApp(t, testutil.GDPTax())

	status, body, _ := get(t, app, "/variables/2/simulation?runs=5")
	require.Equal(t, fiber.StatusOK, status)

	response := decode[SimulationResponse](t, body)
	require.NotNil(t, response.Result)
	assert.Equal(t, 5, response.Runs)
	assert.Equal(t, 5, response.Completed)
	assert.Equal(t, "(Tax according to the GDP)", response.Label)
	assert.Len(t, response.Mean, 5)
	// Without noise the bands collapse onto the mean.
	assert.Equal(t, response.Mean, response.Upper)
	assert.Equal(t, response.Mean, response.Lower)

	status, body, _ = get(t, app, "/variables/2/simulation?markup=html")
	require.Equal(t, fiber.StatusOK, status)

	html := decode[SimulationResponse](t, body)
	assert.Equal(t, 10, html.Runs)
	assert.Equal(t, "(<b>Tax</b> according to the <b>GDP</b>)", html.Label)
}

func TestGetComparison(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantTitle string
	}{
		{
			name:      "explicit pair",
			target:    "/comparison?first=2&second=1&runs=3",
			wantTitle: "(Tax according to the GDP) VS (GDP)",
		},
		{
			name:      "default pair",
			target:    "/comparison?runs=3",
			wantTitle: "(GDP) VS (Tax according to the GDP)",
		},
		{
			name:      "html markup",
			target:    "/comparison?first=1&second=2&markup=html",
			wantTitle: "(<b>GDP</b>) VS (<b>Tax</b> according to the <b>GDP</b>)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, newTestApp(t, testutil.GDPTax()), tt.target)
			require.Equal(t, fiber.StatusOK, status, string(body))

			response := decode[ComparisonResponse](t, body)
			assert.Equal(t, tt.wantTitle, response.Title)
			assert.Equal(t, []int{2023, 2024, 2025, 2026, 2027}, response.Years)
			assert.Len(t, response.First.Mean, 5)
			assert.Len(t, response.Second.Upper, 5)
		})
	}
}

func TestGetGraph(t *testing.T) {
	app := newTestApp(t, testutil.GDPTax())

	status, body, _ := get(t, app, "/graph")
	require.Equal(t, fiber.StatusOK, status)

	response := decode[GraphResponse](t, body)
	require.NotNil(t, response.Info)
	assert.Equal(t, 2, response.TotalVariables)
	assert.Equal(t, 1, response.MaxLevel)
	assert.Equal(t, []int64{1}, response.Levels[0])
	assert.Equal(t, []int64{2}, response.Levels[1])

	require.Len(t, response.Variables, 2)
	assert.Equal(t, []int64{2}, response.Variables[0].Dependents)
	assert.Equal(t, "GDP", response.Variables[1].DriverName)
	assert.Equal(t, []int64{1}, response.Variables[1].Drivers)

	status, body, header := get(t, app, "/graph/dot")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, header.Get(fiber.HeaderContentType), "text/vnd.graphviz")
	assert.Contains(t, string(body), `"1" -> "2";`)
}

func TestGetGraph_Cycle(t *testing.T) {
	store := testutil.NewStore().Add(testutil.Calculated(1, "A", 2), testutil.Calculated(2, "B", 1))

	status, _, _ := get(t, newTestApp(t, store), "/graph")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
