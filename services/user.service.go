package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thisIsAskari/natours/domain"
)

type UserService interface {
	ModelService[domain.User]

	// FindByEmail resolves an email through the visibility guard: a
	// deactivated user is treated as absent, so both lookups and signup
	// uniqueness probes ignore it. Returns (nil, nil) when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByResetToken(ctx context.Context, hashedToken string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}
