package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	"github.com/bibbank/loan-lifecycle/internal/domain/event"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
	pkgkafka "github.com/bibbank/loan-lifecycle/pkg/kafka"
)

const tracerName = "github.com/bibbank/loan-lifecycle/internal/infrastructure/kafka"

// ApplicationIntake is implemented by usecase.IntakeApplicationUseCase.
type ApplicationIntake interface {
	Execute(ctx context.Context, req dto.IntakeApplicationRequest) (dto.IntakeApplicationResponse, error)
}

// NewIntakeHandler returns a consumer handler that opens review cases for
// each ApplicationSubmitted event. Other event types are acknowledged and
// ignored.
func NewIntakeHandler(intake ApplicationIntake, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		if msg.Headers[HeaderEventType] != event.TypeApplicationSubmitted {
			return nil
		}

		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Headers))
		ctx, span := otel.Tracer(tracerName).Start(ctx, "intake "+event.TypeApplicationSubmitted,
			trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		var envelope struct {
			AggregateID string `json:"aggregate_id"`
		}
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			return pkgkafka.Permanent(fmt.Errorf("decode %s: %w", event.TypeApplicationSubmitted, err))
		}
		if envelope.AggregateID == "" {
			return pkgkafka.Permanent(fmt.Errorf("decode %s: missing aggregate_id", event.TypeApplicationSubmitted))
		}

		span.SetAttributes(attribute.String("application_id", envelope.AggregateID))
		resp, err := intake.Execute(ctx, dto.IntakeApplicationRequest{ApplicationID: envelope.AggregateID})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "intake failed")
		}
		if errors.Is(err, valueobject.ErrNotFound) {
			return pkgkafka.Permanent(fmt.Errorf("intake application %s: %w", envelope.AggregateID, err))
		}
		if err != nil {
			return fmt.Errorf("intake application %s: %w", envelope.AggregateID, err)
		}

		logger.InfoContext(ctx, "application intake complete",
			"application_id", envelope.AggregateID,
			"cases_opened", len(resp.Opened),
		)
		return nil
	}
}
