package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"backofficeWs/internal/modules/realtime/application/port"
	"backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/shared/normalization"
)

// KafkaConsumer reads the change events of one collection from one topic.
type KafkaConsumer struct {
	reader     *kafka.Reader
	collection string
}

func NewKafkaConsumer(brokers []string, groupID, topic, collection string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
		collection: normalization.NormalizeCollection(collection),
	}
}

// Consume blocks until ctx ends. Handler failures are logged and the message is committed.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(*domain.Message) error) error {
	defer c.reader.Close()
	backoff := time.Second
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.String("collection", c.collection), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		msg := decodeMessage(m, c.collection)
		slog.Info("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", msg.Entity),
			slog.String("action", msg.Action),
			slog.String("resourceId", msg.ResourceID),
		)
		if err := handler(msg); err != nil {
			slog.Warn("kafka handler error", slog.String("collection", c.collection), slog.Any("error", err))
		}
	}
}

type rawEvent struct {
	Entity     string         `json:"entity"`
	Collection string         `json:"collection"`
	Action     string         `json:"action"`
	Event      string         `json:"event"`
	ResourceID any            `json:"resourceId"`
	ID         any            `json:"id"`
	Metadata   map[string]any `json:"metadata"`
	Data       any            `json:"data"`
}

// decodeMessage turns a Kafka record into a change event of collection. Records that
// are not JSON objects still count as an "updated" event so open views reload.
func decodeMessage(m kafka.Message, collection string) *domain.Message {
	msg := &domain.Message{Entity: collection, Timestamp: time.Now().UTC()}

	var event rawEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		msg.Action = actionFromKey(m.Key)
		if len(m.Value) > 0 {
			msg.Data = string(m.Value)
		}
		msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)
		return msg
	}

	if entity := normalization.NormalizeCollection(firstNonEmpty(event.Collection, event.Entity)); normalization.IsKnownCollection(entity) {
		msg.Entity = entity
	}
	msg.Action = strings.ToLower(firstNonEmpty(event.Action, event.Event, actionFromKey(m.Key)))
	if idx := strings.LastIndex(msg.Action, "."); idx >= 0 {
		msg.Action = msg.Action[idx+1:]
	}
	msg.ResourceID = firstNonEmpty(normalization.Stringify(event.ResourceID), normalization.Stringify(event.ID))
	msg.Metadata = stringifyMetadata(event.Metadata)
	msg.Data = event.Data
	msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)
	return msg
}

func stringifyMetadata(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		out[key] = normalization.Stringify(value)
	}
	return out
}

func actionFromKey(key []byte) string {
	if action := strings.ToLower(strings.TrimSpace(string(key))); action != "" && !strings.ContainsAny(action, " {") {
		return action
	}
	return domain.ActionUpdated
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var _ port.PubSubPort = (*KafkaConsumer)(nil)
