package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/pkg/config"
)

// KafkaWriter publica eventos en un tópico; la clave es el envío o la ubicación
// para mantener el orden por entidad dentro de la partición.
type KafkaWriter struct {
	client *kgo.Client
	topic  string
}

// NewKafkaWriter devuelve nil, nil si no hay brokers configurados.
func NewKafkaWriter(cfg config.KafkaConfig) (*KafkaWriter, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaWriter{client: client, topic: cfg.Topic}, nil
}

func (w *KafkaWriter) Name() string { return "kafka" }

func (w *KafkaWriter) Write(ctx context.Context, events []audit.Event) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", e.Action, err)
		}
		records = append(records, &kgo.Record{
			Topic: w.topic,
			Key:   []byte(e.Key()),
			Value: payload,
			Headers: []kgo.RecordHeader{
				{Key: "action", Value: []byte(e.Action)},
			},
		})
	}
	return w.client.ProduceSync(ctx, records...).FirstErr()
}

// Close vacía y cierra el cliente.
func (w *KafkaWriter) Close() {
	w.client.Close()
}
