package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/kova/internal/metrics"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.PaymentsRecorded.WithLabelValues("paid"))
	metrics.RecordPayment("paid")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PaymentsRecorded.WithLabelValues("paid")))

	before = testutil.ToFloat64(metrics.ShareLookups.WithLabelValues("malformed"))
	metrics.RecordShareLookup("malformed")
	metrics.RecordShareLookup("malformed")
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.ShareLookups.WithLabelValues("malformed")))

	before = testutil.ToFloat64(metrics.SlowQueries)
	metrics.IncrementSlowQuery()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SlowQueries))
}
