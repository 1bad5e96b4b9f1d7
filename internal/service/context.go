package service

import (
	"context"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

// Actor is who triggered an operation, recorded in the activity log.
type Actor struct {
	Type string
	ID   uint
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor on ctx, defaulting to the system.
func ActorFrom(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorKey{}).(Actor); ok {
		return actor
	}
	return Actor{Type: models.ActorSystem}
}
