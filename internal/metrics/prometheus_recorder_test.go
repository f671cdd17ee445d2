package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncSessionCompleted("pomodoro")
	pr.IncSessionCompleted("pomodoro")
	pr.IncSessionCompleted("shortBreak")
	pr.AddFocusTime(25 * time.Minute)
	pr.AddFocusTime(-time.Minute)
	pr.IncSkipped("longBreak")
	pr.IncManualLog("stopwatch")
	pr.SetRemaining(90 * time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.completed.WithLabelValues("pomodoro")), 0)
	assert.InDelta(t, 1500, testutil.ToFloat64(pr.focusTime), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.skipped.WithLabelValues("longBreak")), 0)
	assert.InDelta(t, 90, testutil.ToFloat64(pr.remaining), 0)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pomotaro_sessions_completed_total"))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncSessionCompleted("pomodoro")
	r.AddFocusTime(time.Minute)
	r.SetRemaining(time.Second)
}
