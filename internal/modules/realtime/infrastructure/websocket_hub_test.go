package infrastructure

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backofficeWs/internal/modules/realtime/domain"
)

func drain(t *testing.T, c *Client) []domain.Message {
	t.Helper()
	var out []domain.Message
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return out
			}
			var msg domain.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("invalid message: %v", err)
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHubBroadcastRespectsTopicAndCollection(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	orders := NewClient(hub, nil, "u1", "s1", "orders", "t", 4, nil)
	returns := NewClient(hub, nil, "u2", "s2", "returns", "t", 4, nil)
	events := NewClient(hub, nil, "u3", "s3", "", "t", 4, nil)
	hub.AttachClient(orders, []string{"orders.updated"})
	hub.AttachClient(returns, []string{"returns.updated", "orders.updated"})
	hub.AttachClientToAll(events)

	msg := domain.NewCollectionMessage("orders", "updated", "o1", nil, time.Now(), nil)
	hub.Broadcast(context.Background(), msg)

	if got := drain(t, orders); len(got) != 1 || got[0].Topic != "orders.updated" || got[0].ResourceID != "o1" {
		t.Fatalf("orders client expected the event, got %+v", got)
	}
	if got := drain(t, returns); len(got) != 0 {
		t.Fatalf("returns client must be filtered by collection, got %+v", got)
	}
	if got := drain(t, events); len(got) != 1 {
		t.Fatalf("global client expected the event, got %+v", got)
	}
}

func TestHubBroadcastTargetsSession(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	first := NewClient(hub, nil, "u1", "s1", "jobs", "t", 4, nil)
	second := NewClient(hub, nil, "u1", "s2", "jobs", "t", 4, nil)
	hub.AttachClient(first, []string{"jobs.deleted"})
	hub.AttachClient(second, []string{"jobs.deleted"})

	hub.Broadcast(context.Background(), domain.NewCollectionMessage("jobs", "deleted", "j1", nil, time.Now(), domain.Metadata{"sessionId": "s2"}))

	if got := drain(t, first); len(got) != 0 {
		t.Fatalf("first session must not receive targeted message, got %+v", got)
	}
	if got := drain(t, second); len(got) != 1 {
		t.Fatalf("second session expected message, got %+v", got)
	}
}

func TestHubReplacesClientWithSameKey(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	old := NewClient(hub, nil, "u1", "s1", "orders", "t", 4, nil)
	closed := make(chan struct{})
	old.AddCloseHook(func(*Client) { close(closed) })
	hub.AttachClient(old, []string{"orders.updated"})

	replacement := NewClient(hub, nil, "u1", "s1", "orders", "t", 4, nil)
	hub.AttachClient(replacement, []string{"orders.updated"})

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("expected previous client to be closed")
	}
	if n := hub.Subscribers("orders.updated"); n != 1 {
		t.Fatalf("expected one subscriber, got %d", n)
	}
}

func TestHubDetachesSlowClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	slow := NewClient(hub, nil, "u1", "s1", "orders", "t", 1, nil)
	closed := make(chan struct{})
	slow.AddCloseHook(func(*Client) { close(closed) })
	hub.AttachClient(slow, []string{"orders.updated"})

	msg := domain.NewCollectionMessage("orders", "updated", "o1", nil, time.Now(), nil)
	hub.Broadcast(context.Background(), msg)
	hub.Broadcast(context.Background(), msg)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("expected slow client to be detached")
	}
	if n := hub.Subscribers("orders.updated"); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestCommandProcessorBuiltins(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var fallbackActions []string
	client := NewClient(hub, nil, "u1", "s1", "orders", "t", 4, func(ctx context.Context, _ *Client, cmd Command) {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("fallback context must carry a deadline")
		}
		fallbackActions = append(fallbackActions, cmd.Action)
	})
	hub.AttachClient(client, nil)

	client.processCommand(Command{Action: " Subscribe ", Topic: "orders.created"})
	if n := hub.Subscribers("orders.created"); n != 1 {
		t.Fatalf("expected subscription, got %d", n)
	}
	client.processCommand(Command{Action: "unsubscribe", Topic: "orders.created"})
	if n := hub.Subscribers("orders.created"); n != 0 {
		t.Fatalf("expected unsubscription, got %d", n)
	}

	client.processCommand(Command{Action: "ping"})
	if got := drain(t, client); len(got) != 1 || got[0].Topic != domain.TopicSystemPong {
		t.Fatalf("expected pong, got %+v", got)
	}

	client.processCommand(Command{Action: "load"})
	client.processCommand(Command{Action: "refresh"})
	if len(fallbackActions) != 2 || fallbackActions[0] != "load" || fallbackActions[1] != "refresh" {
		t.Fatalf("fallback must run in order, got %v", fallbackActions)
	}
}
