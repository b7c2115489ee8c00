package dao

import (
	"context"
)

// Service is a minimal generic persistence contract shared by stepgate
// stores. K is the entity key type, T the entity type.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
