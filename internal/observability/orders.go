// Package observability decorates the order workflow with tracing, metrics
// and structured logs.
package observability

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/order-placement/internal/domain/apperr"
	"github.com/xenking/order-placement/internal/domain/order"
)

const instrumentationName = "github.com/xenking/order-placement/internal/observability"

// OrderService is the order workflow.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	FindOrder(ctx context.Context, id string) (*order.Order, error)
}

var _ OrderService = (*order.Service)(nil)

// Orders wraps an OrderService.
type Orders struct {
	inner  OrderService
	tracer trace.Tracer

	created   metric.Int64Counter
	rejected  metric.Int64Counter
	unitsSold metric.Int64Counter
	duration  metric.Float64Histogram
}

var _ OrderService = (*Orders)(nil)

// NewOrders instruments inner using the given providers.
func NewOrders(inner OrderService, tp trace.TracerProvider, mp metric.MeterProvider) (*Orders, error) {
	meter := mp.Meter(instrumentationName)
	o := &Orders{
		inner:  inner,
		tracer: tp.Tracer(instrumentationName),
	}

	var err error
	if o.created, err = meter.Int64Counter("orders.created",
		metric.WithDescription("Orders successfully placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.created")
	}
	if o.rejected, err = meter.Int64Counter("orders.rejected",
		metric.WithDescription("Orders refused, by error kind"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.rejected")
	}
	if o.unitsSold, err = meter.Int64Counter("orders.units_sold",
		metric.WithDescription("Product units removed from stock by placed orders"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.units_sold")
	}
	if o.duration, err = meter.Float64Histogram("orders.duration",
		metric.WithDescription("Order creation latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, errors.Wrap(err, "orders.duration")
	}

	return o, nil
}

// CreateOrder places an order through the wrapped service.
func (o *Orders) CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	ctx, span := o.tracer.Start(ctx, "order.Create", trace.WithAttributes(
		attribute.String("customer.id", req.CustomerID),
		attribute.Int("order.items", len(req.Items)),
	))
	defer span.End()

	lg := zctx.From(ctx).With(zap.String("customer_id", req.CustomerID))
	start := time.Now()

	created, err := o.inner.CreateOrder(ctx, req)
	kind := apperr.KindOf(err)
	o.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
	if err != nil {
		o.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind == apperr.KindUnknown {
			lg.Error("Order failed", zap.Error(err))
		} else {
			lg.Info("Order rejected", zap.Stringer("kind", kind), zap.String("reason", err.Error()))
		}
		return nil, err
	}

	units := created.Units()
	o.created.Add(ctx, 1)
	o.unitsSold.Add(ctx, int64(units))
	span.SetAttributes(attribute.String("order.id", created.ID))
	lg.Info("Order created",
		zap.String("order_id", created.ID),
		zap.Int("units", units),
		zap.String("total", created.Total().StringFixed(2)),
	)
	return created, nil
}

// FindOrder loads an order through the wrapped service.
func (o *Orders) FindOrder(ctx context.Context, id string) (*order.Order, error) {
	ctx, span := o.tracer.Start(ctx, "order.Find", trace.WithAttributes(
		attribute.String("order.id", id),
	))
	defer span.End()

	found, err := o.inner.FindOrder(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		zctx.From(ctx).Debug("Order lookup failed", zap.String("order_id", id), zap.Error(err))
		return nil, err
	}
	return found, nil
}
