package mq_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"voyago/models"
	"voyago/mq"
	"voyago/rdx"

	"github.com/alicebob/miniredis/v2"
)

func TestEmitPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := rdx.New(mr.Addr())
	defer cache.Close()

	ctx := context.Background()
	sub := cache.Conn.Subscribe(ctx, "entity-events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	em := mq.NewEmitter(cache)
	em.Emit(ctx, "hotel-created", models.Event{EntityType: "hotel", EntityID: "abc", Method: "POST"})

	select {
	case msg := <-sub.Channel():
		var ev models.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.EntityType != "hotel" || ev.EntityID != "abc" || ev.Method != "POST" {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
