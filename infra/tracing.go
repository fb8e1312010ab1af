package infra

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName = "dockcall-backend"
)

var globalTracer trace.Tracer

// InitTracer initializes the global tracer.
func InitTracer() {
	globalTracer = otel.Tracer(ServiceName)
}

// GetTracer returns the global tracer, initializing it on first use.
func GetTracer() trace.Tracer {
	if globalTracer == nil {
		InitTracer()
	}
	return globalTracer
}

// StartSpan starts a new span with optional attributes.
func StartSpan(ctx context.Context, operationName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, operationName)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// RecordError records an error on the span and marks it failed.
func RecordError(span trace.Span, err error, description string, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.RecordError(err)
	if description != "" {
		span.SetStatus(codes.Error, description)
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

// MarkSuccess marks the span as successful.
func MarkSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

// WithSpan runs fn inside a span, recording its error or success.
func WithSpan(ctx context.Context, operationName string, fn func(context.Context, trace.Span) error, attrs ...attribute.KeyValue) error {
	ctx, span := StartSpan(ctx, operationName, attrs...)
	defer span.End()

	err := fn(ctx, span)
	if err != nil {
		RecordError(span, err, "operation failed")
		return err
	}

	MarkSuccess(span)
	return nil
}

func AttrString(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

func AttrInt(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

func AttrBool(key string, value bool) attribute.KeyValue {
	return attribute.Bool(key, value)
}

// Domain attribute helpers.
func AttrDriverID(id string) attribute.KeyValue {
	return attribute.String("driver.id", id)
}

func AttrCallID(id string) attribute.KeyValue {
	return attribute.String("call.id", id)
}

func AttrUserRole(role string) attribute.KeyValue {
	return attribute.String("user.role", role)
}

func AttrOperation(operation string) attribute.KeyValue {
	return attribute.String("service.operation", operation)
}

// StartCallLifecycleSpan starts a span for a call lifecycle operation.
func StartCallLifecycleSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	baseAttrs := []attribute.KeyValue{AttrOperation(operation)}
	baseAttrs = append(baseAttrs, attrs...)
	return StartSpan(ctx, "call_lifecycle_"+operation, baseAttrs...)
}

// StartDriverRegistrySpan starts a span for a driver registry operation.
func StartDriverRegistrySpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	baseAttrs := []attribute.KeyValue{AttrOperation(operation)}
	baseAttrs = append(baseAttrs, attrs...)
	return StartSpan(ctx, "driver_registry_"+operation, baseAttrs...)
}
