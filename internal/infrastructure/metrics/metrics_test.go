package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectors(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(trmResolutions.WithLabelValues("history"))
	IncTRMResolution("history")
	assert.Equal(t, before+1, testutil.ToFloat64(trmResolutions.WithLabelValues("history")))

	ObserveTRMFetch("", 10*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(trmFetchTotal.WithLabelValues("unknown")), 1.0)

	ObserveHTTPRequest("GET", "", 200, time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "200")), 1.0)

	before = testutil.ToFloat64(alertsGenerated.WithLabelValues("ArrivalToday"))
	AddAlerts("ArrivalToday", 0)
	AddAlerts("ArrivalToday", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(alertsGenerated.WithLabelValues("ArrivalToday")))

	IncExport("xlsx", "")
	assert.GreaterOrEqual(t, testutil.ToFloat64(exportTotal.WithLabelValues("xlsx", ResultSuccess)), 1.0)
}
