// Package observe wraps one lifecycle transition in a span, a counter sample
// and a log line.
package observe

import (
	"context"
	"errors"
	"log/slog"

	"oneshelf-backend/internal/domain/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scope = "oneshelf/usecase"

var (
	tracer      = otel.Tracer(scope)
	transitions metric.Int64Counter
)

func init() {
	var err error
	transitions, err = otel.Meter(scope).Int64Counter("loan.transitions",
		metric.WithDescription("Loan lifecycle transitions by outcome"))
	if err != nil {
		otel.Handle(err)
	}
}

// Outcome buckets an error into the label used on spans and counters.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrValidation):
		return "invalid"
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrForbidden):
		return "denied"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	}
	return "error"
}

// Transition starts a span named name. The returned func must be deferred
// with a pointer to the caller's named error result.
func Transition(ctx context.Context, log *slog.Logger, name string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		outcome := Outcome(err)
		if transitions != nil {
			transitions.Add(ctx, 1, metric.WithAttributes(
				attribute.String("transition", name),
				attribute.String("outcome", outcome),
			))
		}

		args := make([]any, 0, len(attrs)*2+4)
		for _, a := range attrs {
			args = append(args, string(a.Key), a.Value.Emit())
		}
		args = append(args, "outcome", outcome)
		switch outcome {
		case "ok":
			log.DebugContext(ctx, name, args...)
		case "error":
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.ErrorContext(ctx, name, append(args, "err", err)...)
		default:
			span.SetAttributes(attribute.String("outcome", outcome))
			log.InfoContext(ctx, name, append(args, "err", err)...)
		}
		span.End()
	}
}
