package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey struct{}

var ErrNoUser = errors.New("no user in context")

// WithUser attaches u to ctx. The middleware does this for every /api request.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func CurrentUser(ctx context.Context) (User, error) {
	u, ok := ctx.Value(contextKey{}).(User)
	if !ok {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return u, nil
}

func CurrentId(ctx context.Context) (int, error) {
	u, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.Id, nil
}
