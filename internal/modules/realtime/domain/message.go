package domain

import (
	"strings"
	"time"
)

// Metadata carries routing hints of a message. The hub filters on the "sessionId"
// and "collection" keys.
type Metadata map[string]string

// Message is the envelope pushed to websocket clients and decoded from Kafka events.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewCollectionMessage builds a message on the <collection>.<action> topic.
func NewCollectionMessage(collection, action, resourceID string, data any, at time.Time, extras Metadata) *Message {
	collection = strings.TrimSpace(collection)
	metadata := map[string]string{"collection": collection}
	mergeInto(metadata, extras)
	return &Message{
		Topic:      CustomTopic(collection, action),
		Entity:     collection,
		Action:     action,
		ResourceID: strings.TrimSpace(resourceID),
		Metadata:   metadata,
		Data:       data,
		Timestamp:  at.UTC(),
	}
}

// NewSystemMessage builds a system.<action> message.
func NewSystemMessage(action string, data any, at time.Time, extras Metadata) *Message {
	metadata := map[string]string{}
	mergeInto(metadata, extras)
	if len(metadata) == 0 {
		metadata = nil
	}
	return &Message{
		Topic:     CustomTopic(SystemEntity, action),
		Entity:    SystemEntity,
		Action:    action,
		Metadata:  metadata,
		Data:      data,
		Timestamp: at.UTC(),
	}
}

// NewErrorMessage builds a <collection>.error message; reason is copied into the data.
func NewErrorMessage(collection, action, reason string, at time.Time, extras Metadata) *Message {
	metadata := Metadata{"action": action}
	if strings.TrimSpace(reason) != "" {
		metadata["reason"] = reason
	}
	mergeInto(metadata, extras)
	msg := NewCollectionMessage(collection, ActionError, "", map[string]string{"error": reason}, at, metadata)
	return msg
}

// Attr returns a metadata value, trimmed.
func (m *Message) Attr(key string) string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(m.Metadata[key])
}

func mergeInto(target map[string]string, extras Metadata) {
	for key, value := range extras {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		target[key] = value
	}
}
