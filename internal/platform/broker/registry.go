package broker

import (
	"context"
	"log/slog"

	"backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/modules/realtime/infrastructure"
)

// StartKafkaConsumers starts one consumer per (collection, topic) pair and returns
// immediately. Consumers stop when ctx ends.
func StartKafkaConsumers(
	ctx context.Context,
	registry *infrastructure.HandlerRegistry,
	brokers []string,
	groupID string,
	topics map[string][]string,
) int {
	if len(brokers) == 0 {
		slog.Info("kafka disabled: no brokers configured")
		return 0
	}
	started := 0
	for collection, collectionTopics := range topics {
		if !registry.Has(collection) {
			slog.Warn("kafka topics without handler", slog.String("collection", collection), slog.Any("topics", collectionTopics))
			continue
		}
		for _, topic := range collectionTopics {
			consumer := NewKafkaConsumer(brokers, groupID, topic, collection)
			started++
			go func(collection, topic string) {
				err := consumer.Consume(ctx, func(msg *domain.Message) error {
					return registry.Dispatch(ctx, msg)
				})
				slog.Info("kafka consumer stopped", slog.String("collection", collection), slog.String("topic", topic), slog.Any("reason", err))
			}(collection, topic)
		}
	}
	return started
}
