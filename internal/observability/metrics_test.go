package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/demand-service/internal/domain"
)

func TestMetrics(t *testing.T) {
	t.Run("Should count lifecycle events", func(t *testing.T) {
		m := NewMetrics()
		m.RequestCreated()
		m.RequestCreated()
		m.StatusChanged(domain.RequestStatusCompleted)
		m.GranteeAssigned()
		m.AuthFailed("bad_credentials")

		assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsCreated))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("COMPLETED")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.granteeAssigned))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.authFailures.WithLabelValues("bad_credentials")))
	})
	t.Run("Should record http traffic", func(t *testing.T) {
		m := NewMetrics()
		m.RecordRequest("/requests", "GET", 200, 15*time.Millisecond)
		m.RecordError("/requests", "POST", "VALIDATION_FAILED")

		assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/requests", "GET", "200")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.httpErrors.WithLabelValues("/requests", "POST", "VALIDATION_FAILED")))
		assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
	})
	t.Run("Should tolerate nil receiver", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.RequestCreated()
			m.StatusChanged(domain.RequestStatusRejected)
			m.RecordRequest("/", "GET", 200, time.Millisecond)
		})
		assert.Nil(t, m.Registry())
	})
}
