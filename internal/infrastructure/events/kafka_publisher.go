// Package events publica los movimientos de stock confirmados en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

var _ ports.MovementPublisher = (*KafkaPublisher)(nil)

// messageWriter es la parte de kafka.Writer que usa el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe un mensaje por movimiento, con llave store:variant
// para que los movimientos de una posición queden en la misma partición.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

// NewKafkaPublisher crea el writer contra los brokers y el topic dados.
// timeout <= 0 usa 2s.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &KafkaPublisher{timeout: timeout, writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: timeout,
	}}
}

// MovementEvent es el payload JSON publicado.
type MovementEvent struct {
	ID           string          `json:"id"`
	StoreID      string          `json:"store_id"`
	VariantID    string          `json:"variant_id"`
	Change       decimal.Decimal `json:"change"`
	MovementType string          `json:"movement_type"`
	ReferenceID  string          `json:"reference_id,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	ActorID      string          `json:"actor_id,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Publish envía los movimientos en un solo lote. El movimiento ya está
// confirmado: la escritura no se corta si el cliente cancela la petición,
// pero tampoco espera más que el timeout del publicador.
func (p *KafkaPublisher) Publish(ctx context.Context, movements []*entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(movements))
	for _, m := range movements {
		msg, err := buildMessage(ctx, m)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	timeout := p.timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := p.writer.WriteMessages(wctx, msgs...); err != nil {
		return fmt.Errorf("kafka: publicar movimientos: %w", err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(ctx context.Context, m *entity.StockMovement) (kafka.Message, error) {
	payload, err := json.Marshal(MovementEvent{
		ID:           m.ID,
		StoreID:      m.StoreID,
		VariantID:    m.VariantID,
		Change:       m.Change,
		MovementType: m.MovementType,
		ReferenceID:  m.ReferenceID,
		Reason:       m.Reason,
		ActorID:      m.ActorID,
		UnitCost:     m.UnitCost,
		CreatedAt:    m.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar movimiento: %w", err)
	}
	carrier := &headerCarrier{headers: []kafka.Header{
		{Key: "movement_type", Value: []byte(m.MovementType)},
	}}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return kafka.Message{
		Key:     []byte(m.StoreID + ":" + m.VariantID),
		Value:   payload,
		Headers: carrier.headers,
		Time:    m.CreatedAt,
	}, nil
}

// headerCarrier adapta []kafka.Header a propagation.TextMapCarrier.
type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range c.headers {
		if h.Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
