package transport

import (
	"strings"

	domain "backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/shared/normalization"
)

func buildTopics(collection string, allowedActions []string) []string {
	collection = strings.TrimSpace(collection)
	baseTopics := []string{
		domain.StateTopic(collection),
		domain.MutationTopic(collection),
		domain.DetailTopic(collection),
		domain.LookupTopic(collection),
		domain.ErrorTopic(collection),
	}
	topics := make([]string, 0, len(baseTopics)+len(allowedActions))
	seen := make(map[string]struct{}, len(baseTopics)+len(allowedActions))
	for _, topic := range baseTopics {
		if topic == "" {
			continue
		}
		topics = append(topics, topic)
		seen[topic] = struct{}{}
	}
	for _, action := range allowedActions {
		action = strings.TrimSpace(strings.ToLower(action))
		if action == "" {
			continue
		}
		topic := domain.CustomTopic(collection, action)
		if _, exists := seen[topic]; exists || topic == "" {
			continue
		}
		topics = append(topics, topic)
		seen[topic] = struct{}{}
	}
	return topics
}

func normalizeCollection(raw string) string {
	return normalization.NormalizeCollection(raw)
}
