package identity

import "context"

type ctxKey string

const actorKey ctxKey = "clinicore.actor"

// WithActor stores the actor in context. Used only at the HTTP boundary;
// core packages take the actor as an explicit parameter.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the actor if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return Actor{}, false
	}
	actor, ok := val.(Actor)
	return actor, ok && actor.Role.Valid()
}
