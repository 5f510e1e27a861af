package queue

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/clanops/roster-bot/internal/api/metrics"
	"github.com/clanops/roster-bot/internal/bot"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Handler processes a single chat update.
type Handler interface {
	Handle(ctx context.Context, u bot.Update) error
}

// Dispatcher routes chat updates to a fixed set of workers using consistent
// hashing on the actor id, guaranteeing per-actor processing order.
type Dispatcher struct {
	workers []chan bot.Update
	handler Handler
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handler Handler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan bot.Update, numWorkers),
		handler: handler,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan bot.Update, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an update to the worker responsible for its actor.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(u bot.Update) {
	i := d.shardIndex(u.ActorID)
	d.workers[i] <- u
	metrics.UpdatesQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(actorID int64) int {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(actorID))
	h := fnv.New32a()
	_, _ = h.Write(buf[:])
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan bot.Update) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			if err := d.handler.Handle(ctx, u); err != nil {
				d.log.Error().Err(err).
					Int64("actor_id", u.ActorID).
					Int64("update_id", u.UpdateID).
					Int("worker_id", id).
					Msg("update processing failed")
			}
			metrics.UpdatesQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		}
	}
}
