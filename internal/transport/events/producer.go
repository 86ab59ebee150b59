package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	BalanceUpdatedTopic = "balance.updated"

	defaultWriteTimeout = 5 * time.Second
)

// BalanceEvent - снимок счета после успешно зафиксированной операции.
type BalanceEvent struct {
	UserID          string          `json:"userId"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	ReservedBalance decimal.Decimal `json:"reservedBalance"`
	Currency        string          `json:"currency"`
	TransactionID   *uuid.UUID      `json:"transactionId,omitempty"`
	At              time.Time       `json:"at"`
}

// Writer - интерфейс поверх kafka.Writer для подмены в тестах.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует события баланса в kafka. Нулевой *Producer безопасен:
// все вызовы превращаются в no-op, ядро сервиса от брокера не зависит.
type Producer struct {
	writer Writer
	log    logrus.FieldLogger
}

func New(brokerURL string, l logrus.FieldLogger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerURL),
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: defaultWriteTimeout,
		ReadTimeout:  defaultWriteTimeout,
	}
	return &Producer{writer: writer, log: l}
}

func NewWithWriter(w Writer, l logrus.FieldLogger) *Producer {
	return &Producer{writer: w, log: l}
}

func (p *Producer) PublishBalanceUpdated(ctx context.Context, event BalanceEvent) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal balance event: %s", err.Error())
	}

	message := kafka.Message{
		Topic: BalanceUpdatedTopic,
		Key:   []byte(event.UserID),
		Value: payload,
		Time:  event.At,
	}

	writeCtx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if writeErr := p.writer.WriteMessages(writeCtx, message); writeErr != nil {
		return fmt.Errorf("publish balance event: %s", writeErr.Error())
	}
	return nil
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close() //nolint:wrapcheck
}
