package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
)

func TestMetrics_Report(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Report(ctx, scheduler.Progress{Generation: 3, BestScore: -2000, Accepted: 10, Rejected: 20, PopulationSize: 10, Elapsed: 2 * time.Second})
	m.Report(ctx, scheduler.Progress{Generation: 5, BestScore: -1000, Accepted: 12, Rejected: 38, PopulationSize: 10, Elapsed: 3 * time.Second})

	assert.Equal(t, float64(-1000), testutil.ToFloat64(m.BestScore))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.PopulationSize))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.Elapsed))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.Generations))
	assert.Equal(t, float64(12), testutil.ToFloat64(m.Accepted))
	assert.Equal(t, float64(38), testutil.ToFloat64(m.Rejected))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Done))

	// 重复上报同一代不会重复计数
	m.Report(ctx, scheduler.Progress{Generation: 5, BestScore: -1000, Accepted: 12, Rejected: 38, PopulationSize: 10, Done: true})
	assert.Equal(t, float64(5), testutil.ToFloat64(m.Generations))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Done))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Report(context.Background(), scheduler.Progress{Generation: 1, BestScore: 7, PopulationSize: 4})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "workshop_planner_best_score 7")
	assert.Contains(t, string(body), "workshop_planner_generations_total 1")
}
