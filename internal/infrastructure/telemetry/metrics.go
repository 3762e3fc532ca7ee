package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/bibbank/loan-lifecycle/internal/domain/port"
)

var _ port.LifecycleMetrics = (*LifecycleMetrics)(nil)

// LifecycleMetrics records domain counters through an OpenTelemetry meter.
type LifecycleMetrics struct {
	submitted otelmetric.Int64Counter
	decided   otelmetric.Int64Counter
	sanctions otelmetric.Int64Counter
	disbursed otelmetric.Int64Counter
	payments  otelmetric.Int64Counter
}

// NewLifecycleMetrics creates the counters on meter.
func NewLifecycleMetrics(meter otelmetric.Meter) (*LifecycleMetrics, error) {
	submitted, err := meter.Int64Counter(
		"loan_applications_submitted",
		otelmetric.WithDescription("Applications that completed the wizard"),
	)
	if err != nil {
		return nil, fmt.Errorf("create submitted counter: %w", err)
	}
	decided, err := meter.Int64Counter(
		"verification_case_decisions",
		otelmetric.WithDescription("Verification cases approved or rejected"),
	)
	if err != nil {
		return nil, fmt.Errorf("create decisions counter: %w", err)
	}
	sanctions, err := meter.Int64Counter(
		"sanction_decisions",
		otelmetric.WithDescription("Manager and admin sanction decisions"),
	)
	if err != nil {
		return nil, fmt.Errorf("create sanctions counter: %w", err)
	}
	disbursed, err := meter.Int64Counter(
		"loans_disbursed",
		otelmetric.WithDescription("Sanctioned applications turned into loans"),
	)
	if err != nil {
		return nil, fmt.Errorf("create disbursed counter: %w", err)
	}
	payments, err := meter.Int64Counter(
		"loan_payments_received",
		otelmetric.WithDescription("Installments paid"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments counter: %w", err)
	}
	return &LifecycleMetrics{
		submitted: submitted,
		decided:   decided,
		sanctions: sanctions,
		disbursed: disbursed,
		payments:  payments,
	}, nil
}

func (m *LifecycleMetrics) ApplicationSubmitted(ctx context.Context, loanType string) {
	m.submitted.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("loan_type", loanType)))
}

func (m *LifecycleMetrics) CaseDecided(ctx context.Context, subjectType, decision string) {
	m.decided.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("subject_type", subjectType),
		attribute.String("decision", decision),
	))
}

func (m *LifecycleMetrics) SanctionDecided(ctx context.Context, stage, status string) {
	m.sanctions.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

func (m *LifecycleMetrics) LoanDisbursed(ctx context.Context, loanType string) {
	m.disbursed.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("loan_type", loanType)))
}

func (m *LifecycleMetrics) PaymentReceived(ctx context.Context, loanType string) {
	m.payments.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("loan_type", loanType)))
}
