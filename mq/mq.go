// Package mq publishes entity-change events for the front end's search
// indexer on a Redis pub/sub channel. Emission is best effort: failures are
// logged, never surfaced to the request that triggered them.
package mq

import (
	"context"
	"encoding/json"

	"voyago/models"
	"voyago/rdx"

	"github.com/rs/zerolog/log"
)

const channel = "entity-events"

type Emitter struct {
	cache *rdx.Cache
}

func NewEmitter(cache *rdx.Cache) *Emitter {
	return &Emitter{cache: cache}
}

// Emit publishes one change event. Callers fire it in a goroutine after the
// store write succeeded.
func (e *Emitter) Emit(ctx context.Context, eventName string, ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("mq: marshal %s: %v", eventName, err)
		return
	}
	if err := e.cache.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("mq: publish %s: %v", eventName, err)
	}
}
