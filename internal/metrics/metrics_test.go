package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestNew_RegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	// A second registration on the same registry must panic.
	assert.Panics(t, func() { New(reg) })
}

func TestRecordWebhookAndRoute(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordWebhook("message", "success", 0.2)
	m.RecordWebhook("message", "success", 0.3)
	m.RecordRoute("font")

	families := gather(t, reg)
	counter := families["nvn_webhook_requests_total"].GetMetric()[0].GetCounter()
	assert.Equal(t, 2.0, counter.GetValue())
	assert.Equal(t, uint64(2), families["nvn_webhook_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 1.0, families["nvn_dispatch_routes_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestGauges(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SetRuntimeState(true, 3, 2)
	m.RecordCatalogReload("success", 120, 8)
	m.RecordCatalogReload("error", 0, 0)
	m.RecordSnapshotUpload("success", 4096)

	families := gather(t, reg)
	value := func(name string) float64 {
		return families[name].GetMetric()[0].GetGauge().GetValue()
	}
	assert.Equal(t, 1.0, value("nvn_bot_enabled"))
	assert.Equal(t, 3.0, value("nvn_banned_users"))
	assert.Equal(t, 2.0, value("nvn_muted_users"))
	assert.Equal(t, 120.0, value("nvn_catalog_fonts"), "failed reload keeps last sizes")
	assert.Equal(t, 8.0, value("nvn_catalog_responses"))
	assert.Equal(t, 4096.0, value("nvn_snapshot_size_bytes"))
}

func TestRecordCallsDoNotPanic(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordMessengerCall("send", "success", 0.1)
	m.RecordMessengerCall("profile", "error", 1.2)
	m.RecordScraperRequest("lottery", "success", 0.8)
	m.RecordSingleflightDedup("lottery")
	m.RecordHTTPError("invalid_signature", "webhook")
	m.RecordRateLimited("api")
	m.SetRuntimeState(false, 0, 0)
}
