// Package events publica los eventos del ciclo de vida de las recepciones.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/pkg/config"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
)

var _ reception.EventPublisher = (*KafkaPublisher)(nil)

const defaultBaseDelay = 100 * time.Millisecond

// KafkaPublisher publica cada evento como JSON en un único topic, con el id de la
// recepción como llave de partición para conservar el orden por recepción.
type KafkaPublisher struct {
	producer   sarama.SyncProducer
	topic      string
	maxRetries int
	baseDelay  time.Duration
	log        *logger.Logger
}

// NewSaramaConfig configuración del productor: idempotente y con acuse de todas las réplicas.
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = cfg.Retries
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	return sc
}

// NewKafkaPublisher conecta un SyncProducer a los brokers configurados.
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("kafka: crear productor: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.TopicReception, cfg.Retries, log), nil
}

// NewKafkaPublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, maxRetries int, log *logger.Logger) *KafkaPublisher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{
		producer:   producer,
		topic:      topic,
		maxRetries: maxRetries,
		baseDelay:  defaultBaseDelay,
		log:        log.Component("events.kafka"),
	}
}

// WithBaseDelay cambia la espera inicial entre reintentos (se duplica en cada intento).
func (p *KafkaPublisher) WithBaseDelay(d time.Duration) *KafkaPublisher {
	p.baseDelay = d
	return p
}

// Publish envía el evento reintentando con backoff exponencial hasta maxRetries veces.
func (p *KafkaPublisher) Publish(ctx context.Context, event reception.Event) error {
	msg, err := p.message(event)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("kafka: contexto cancelado: %w", err)
		}
		partition, offset, err := p.producer.SendMessage(msg)
		if err == nil {
			p.log.Info().
				Str("topic", p.topic).
				Int32("partition", partition).
				Int64("offset", offset).
				Str("event_type", event.Type).
				Int64("reception_id", event.ReceptionID).
				Int("attempt", attempt+1).
				Msg("evento publicado")
			return nil
		}
		lastErr = err
		p.log.Warn().Err(err).
			Str("event_type", event.Type).
			Int("attempt", attempt+1).
			Int("max_retries", p.maxRetries).
			Msg("fallo publicando evento, reintentando")

		if attempt < p.maxRetries-1 {
			delay := p.baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka: contexto cancelado durante backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("kafka: evento %s no publicado tras %d intentos: %w", event.Type, p.maxRetries, lastErr)
}

func (p *KafkaPublisher) message(event reception.Event) (*sarama.ProducerMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("kafka: serializar evento: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.ReceptionID, 10)),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
			{Key: []byte("event-id"), Value: []byte(uuid.New().String())},
			{Key: []byte("timestamp"), Value: []byte(event.OccurredAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// Close cierra el productor.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
