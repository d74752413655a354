package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.InitDataVerifications.WithLabelValues("verified").Inc()
	m.InitDataVerifications.WithLabelValues("expired").Add(2)
	m.Notifications.WithLabelValues("sent").Inc()
	m.RequestDuration.WithLabelValues("/api/submit", "200").Observe(0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InitDataVerifications.WithLabelValues("verified")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InitDataVerifications.WithLabelValues("expired")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"tma_init_data_verifications_total",
		"tma_notifications_total",
		"tma_http_request_duration_seconds",
	}, names)
}

func TestNew_SeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
