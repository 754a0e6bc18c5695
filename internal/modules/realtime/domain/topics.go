package domain

import "strings"

const (
	SystemEntity = "system"

	TopicSystemConnected = SystemEntity + "." + ActionConnected
	TopicSystemPong      = SystemEntity + "." + ActionPong
	TopicSystemError     = SystemEntity + "." + ActionError
	TopicSystemRedirect  = SystemEntity + "." + ActionRedirect

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
	ActionRedirect  = "redirect"
	ActionState     = "state"
	ActionMutation  = "mutation"
	ActionDetail    = "detail"
	ActionLookup    = "lookup"
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
)

// StateTopic carries every view state transition of a collection.
func StateTopic(collection string) string {
	return buildEntityTopic(collection, ActionState)
}

func MutationTopic(collection string) string {
	return buildEntityTopic(collection, ActionMutation)
}

func DetailTopic(collection string) string {
	return buildEntityTopic(collection, ActionDetail)
}

func LookupTopic(collection string) string {
	return buildEntityTopic(collection, ActionLookup)
}

func ErrorTopic(collection string) string {
	return buildEntityTopic(collection, ActionError)
}

// CustomTopic returns the canonical topic for the given entity and action.
func CustomTopic(entity, action string) string {
	return buildEntityTopic(entity, action)
}

func buildEntityTopic(entity, action string) string {
	cleanEntity := strings.TrimSpace(entity)
	cleanAction := strings.ToLower(strings.TrimSpace(action))
	if cleanEntity == "" || cleanAction == "" {
		return ""
	}
	return cleanEntity + "." + cleanAction
}
