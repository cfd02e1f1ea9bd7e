package composables

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/pkg/constants"
)

var (
	ErrNoLogger  = errors.New("logger not found")
	ErrNoUser    = errors.New("no authenticated user in context")
	ErrForbidden = errors.New("forbidden")
)

// UseLogger returns the request-scoped logger from the context.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic(ErrNoLogger)
	}
	return logger.(*logrus.Entry)
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// WithUser returns a new context carrying the authenticated caller.
// The caller is always passed explicitly into domain services; this value is
// only the transport-layer handoff from the auth middleware to controllers.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok {
		return user.User{}, ErrNoUser
	}
	return u, nil
}
