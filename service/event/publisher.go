// Package event provides a typed publish/consume bridge over the generic
// messaging queue, used to fan approval store events out to observers.
package event

import (
	"context"

	"github.com/viant/stepgate/service/messaging"
)

type Publisher[T any] struct {
	queue messaging.Queue[T]
}

func NewPublisher[T any](queue messaging.Queue[T]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

func (p *Publisher[T]) Publish(ctx context.Context, payload *T) error {
	return p.queue.Publish(ctx, payload)
}

// Consume takes the next payload off the queue, acknowledging it.
func (p *Publisher[T]) Consume(ctx context.Context) (*T, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
