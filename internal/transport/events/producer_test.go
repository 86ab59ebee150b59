package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishBalanceUpdated(t *testing.T) {
	writer := new(fakeWriter)
	producer := NewWithWriter(writer, nil)

	event := BalanceEvent{
		UserID:          "user-1",
		Type:            "CREDIT",
		Amount:          decimal.NewFromInt(100),
		CurrentBalance:  decimal.NewFromInt(100),
		ReservedBalance: decimal.Zero,
		Currency:        "INR",
		At:              time.Now(),
	}

	require.NoError(t, producer.PublishBalanceUpdated(context.Background(), event))
	require.Len(t, writer.messages, 1)

	message := writer.messages[0]
	assert.Equal(t, BalanceUpdatedTopic, message.Topic)
	assert.Equal(t, []byte("user-1"), message.Key)

	var decoded BalanceEvent
	require.NoError(t, json.Unmarshal(message.Value, &decoded))
	assert.Equal(t, "user-1", decoded.UserID)
	assert.Equal(t, "CREDIT", decoded.Type)
	assert.True(t, decimal.NewFromInt(100).Equal(decoded.CurrentBalance))
}

func TestPublishBalanceUpdatedWriterError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	producer := NewWithWriter(writer, nil)

	err := producer.PublishBalanceUpdated(context.Background(), BalanceEvent{UserID: "user-1"})
	assert.Error(t, err)
}

// Нулевой продюсер используется, когда брокер не сконфигурирован.
func TestNilProducerIsNoop(t *testing.T) {
	var producer *Producer

	assert.NoError(t, producer.PublishBalanceUpdated(context.Background(), BalanceEvent{}))
	assert.NoError(t, producer.Close())
}
