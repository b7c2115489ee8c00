package event

import (
	"context"
)

// Listener runs a consume loop applying handler to every payload until its
// context is cancelled or Stop is called.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*T)
	cancel    context.CancelFunc
}

func NewListener[T any](publisher *Publisher[T], handler func(*T)) *Listener[T] {
	return &Listener[T]{publisher: publisher, handler: handler}
}

func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	go func() {
		for {
			payload, err := l.publisher.Consume(ctx)
			if err != nil {
				return
			}
			if payload != nil {
				l.handler(payload)
			}
		}
	}()
}

func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
