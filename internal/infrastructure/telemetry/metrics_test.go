package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestLifecycleMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLifecycleMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.ApplicationSubmitted(ctx, "home")
	m.ApplicationSubmitted(ctx, "home")
	m.ApplicationSubmitted(ctx, "personal")
	m.CaseDecided(ctx, "kyc", "approved")
	m.SanctionDecided(ctx, "manager", "awaiting-admin")
	m.LoanDisbursed(ctx, "vehicle")
	m.PaymentReceived(ctx, "vehicle")
	m.PaymentReceived(ctx, "vehicle")

	sums := collect(t, reader)

	submitted := sums["loan_applications_submitted"]
	byType := map[string]int64{}
	for _, dp := range submitted.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("loan_type"))
		byType[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"home": 2, "personal": 1}, byType)

	decided := sums["verification_case_decisions"]
	require.Len(t, decided.DataPoints, 1)
	assert.Equal(t, int64(1), decided.DataPoints[0].Value)
	decision, _ := decided.DataPoints[0].Attributes.Value("decision")
	assert.Equal(t, "approved", decision.AsString())

	sanctions := sums["sanction_decisions"]
	require.Len(t, sanctions.DataPoints, 1)
	status, _ := sanctions.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "awaiting-admin", status.AsString())

	require.Len(t, sums["loans_disbursed"].DataPoints, 1)
	assert.Equal(t, int64(1), sums["loans_disbursed"].DataPoints[0].Value)
	require.Len(t, sums["loan_payments_received"].DataPoints, 1)
	assert.Equal(t, int64(2), sums["loan_payments_received"].DataPoints[0].Value)
}
