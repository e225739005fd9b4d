package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"brandpulse/pkg/kafka"
	"brandpulse/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMetricsConsumerMiddleware(t *testing.T) {
	m := &Metrics{}
	mw := MetricsConsumerMiddleware(m)

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	assert.NoError(t, mw(context.Background(), kafka.Message{}, ok))
	assert.NoError(t, mw(context.Background(), kafka.Message{}, ok))
	assert.Error(t, mw(context.Background(), kafka.Message{}, fail))

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.Consumed)
	assert.Equal(t, int64(1), s.ConsumeFailed)
	assert.Zero(t, s.Published)
}

func TestMetricsProducerMiddleware(t *testing.T) {
	m := &Metrics{}
	mw := MetricsProducerMiddleware(m)

	err := mw(context.Background(), kafka.Message{}, func(ctx context.Context, msg kafka.Message) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.Snapshot().Published)
}

func TestLoggingMiddlewarePassesErrorThrough(t *testing.T) {
	want := errors.New("handler failed")
	mw := LoggingConsumerMiddleware(logger.Nop())

	got := mw(context.Background(), kafka.Message{Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return want
	})
	assert.ErrorIs(t, got, want)
}
