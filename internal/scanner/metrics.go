package scanner

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gabapcia/txalert/internal/scanner"

var tracer = otel.Tracer(instrumentationName)

type instruments struct {
	chain        attribute.KeyValue
	ticks        metric.Int64Counter
	tickFailures metric.Int64Counter
	transactions metric.Int64Counter
	alerts       metric.Int64Counter
}

func newInstruments(chain string) instruments {
	meter := otel.Meter(instrumentationName)

	ticks, _ := meter.Int64Counter("txalert.scanner.ticks",
		metric.WithDescription("Completed scan ticks"))
	tickFailures, _ := meter.Int64Counter("txalert.scanner.tick_failures",
		metric.WithDescription("Scan ticks aborted by a fetch failure"))
	transactions, _ := meter.Int64Counter("txalert.scanner.transactions",
		metric.WithDescription("Transactions classified and published"))
	alerts, _ := meter.Int64Counter("txalert.scanner.alerts",
		metric.WithDescription("Transactions that met the alert threshold"))

	return instruments{
		chain:        attribute.String("chain", chain),
		ticks:        ticks,
		tickFailures: tickFailures,
		transactions: transactions,
		alerts:       alerts,
	}
}

func (i instruments) published(ctx context.Context, isAlert bool) {
	i.transactions.Add(ctx, 1, metric.WithAttributes(i.chain))
	if isAlert {
		i.alerts.Add(ctx, 1, metric.WithAttributes(i.chain))
	}
}

// startTick opens the tick span. The returned func ends it and records
// the outcome.
func (i instruments) startTick(ctx context.Context) (context.Context, func(err error)) {
	ctx, span := tracer.Start(ctx, i.chain.Value.AsString()+".tick", trace.WithAttributes(i.chain))

	return ctx, func(err error) {
		defer span.End()

		i.ticks.Add(ctx, 1, metric.WithAttributes(i.chain))
		if err != nil {
			i.tickFailures.Add(ctx, 1, metric.WithAttributes(i.chain))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
}
