package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (s *MetricsTestSuite) TestCounters() {
	m := New(prometheus.NewRegistry())

	m.TransitionApplied("purchase", "sent")
	m.TransitionApplied("purchase", "sent")
	m.JobProcessed("payment_reminder", "done")
	m.ObserveBatch(time.Millisecond)

	body := s.scrape(m)
	s.Contains(body, `telesklad_transitions_total{entity="purchase",to="sent"} 2`)
	s.Contains(body, `telesklad_jobs_processed_total{result="done",type="payment_reminder"} 1`)
	s.Contains(body, "telesklad_job_batch_duration_seconds_count 1")
}

func (s *MetricsTestSuite) scrape(m *Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Result().Body)
	s.Require().NoError(err)
	return string(body)
}

func (s *MetricsTestSuite) TestNilSafe() {
	var m *Metrics
	s.NotPanics(func() {
		m.TransitionApplied("order", "paid")
		m.JobProcessed("bonus_notice", "failed")
		m.ObserveBatch(time.Second)
	})
}

func (s *MetricsTestSuite) TestHandler() {
	m := New(nil)
	m.TransitionApplied("order", "processing")

	s.Contains(s.scrape(m), `telesklad_transitions_total{entity="order",to="processing"} 1`)
}
