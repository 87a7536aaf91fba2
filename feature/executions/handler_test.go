package executions_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-etl/core/database"
	"ticket-etl/core/ledger"
	"ticket-etl/feature/executions"
)

func newTestApp(t *testing.T) (*fiber.App, *ledger.Ledger) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	led := ledger.New(db, zap.NewNop())
	require.NoError(t, led.Prepare())

	app := fiber.New()
	require.NoError(t, executions.NewFeature(led, zap.NewNop()).Load(app))
	return app, led
}

func TestHandleRecent(t *testing.T) {
	app, led := newTestApp(t)

	run, err := led.Begin("incremental")
	require.NoError(t, err)
	run.RecordAPICall(true, 120*time.Millisecond)
	run.RecordAPICall(true, 80*time.Millisecond)
	run.RecordBatch(3, 1, 6)
	require.NoError(t, run.Finish(ledger.StatusSuccess, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/executions/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var views []executions.ExecutionView
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &views))

	require.Len(t, views, 1)
	assert.Equal(t, run.ID(), views[0].ExecutionID)
	assert.Equal(t, ledger.StatusSuccess, views[0].Status)
	assert.Equal(t, 3, views[0].RecordsInserted)
	assert.Equal(t, float64(100), views[0].SuccessRate)
	assert.InDelta(t, 0.1, views[0].AvgAPISeconds, 0.001)
}

func TestHandleRecentEmpty(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/executions/?limit=5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}
