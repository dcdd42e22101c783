package bot

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Dispatcher serializes processing per chat: one worker goroutine per chat
// id consumes its queue in arrival order, so a chat's session state is only
// ever mutated by its own messages, in order. Different chats run
// concurrently and never contend on each other.
type Dispatcher struct {
	mu      sync.Mutex
	queues  map[int64]chan *Incoming
	handler func(context.Context, *Incoming)
	log     *logrus.Logger
}

// queueDepth bounds how many updates one chat may have pending. A full
// queue blocks the webhook handler for that update, which is acceptable
// backpressure for a chat spamming faster than extraction runs.
const queueDepth = 32

// NewDispatcher creates a dispatcher feeding the given handler.
func NewDispatcher(handler func(context.Context, *Incoming), log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		queues:  make(map[int64]chan *Incoming),
		handler: handler,
		log:     log,
	}
}

// Enqueue hands one update to its chat's worker. Callers must call Enqueue
// in arrival order for ordering to hold (the webhook handler does).
func (d *Dispatcher) Enqueue(in *Incoming) {
	d.mu.Lock()
	q, ok := d.queues[in.ChatID]
	if !ok {
		q = make(chan *Incoming, queueDepth)
		d.queues[in.ChatID] = q
		go d.work(in.ChatID, q)
	}
	d.mu.Unlock()

	q <- in
}

func (d *Dispatcher) work(chatID int64, q <-chan *Incoming) {
	d.log.WithField("chat_id", chatID).Debug("chat worker started")
	for in := range q {
		d.handler(context.Background(), in)
	}
}
