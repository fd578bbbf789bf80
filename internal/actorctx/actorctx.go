package actorctx

import "context"

type ctxKey string

const keyActor ctxKey = "actor"

// Actor is the authenticated caller: token subject plus role. It rides the
// request context so code below the HTTP layer never touches gin.
type Actor struct {
	Name string
	Role string
}

func WithActor(ctx context.Context, name, role string) context.Context {
	return context.WithValue(ctx, keyActor, Actor{Name: name, Role: role})
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)

	return a, ok && a.Name != ""
}
