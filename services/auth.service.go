package services

import (
	"context"

	"github.com/thisIsAskari/natours/domain"
)

type AuthService interface {
	Signup(ctx context.Context, input *domain.SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, input *domain.LoginInput) (*domain.User, string, error)
	// ForgotPassword returns the plaintext reset token; only its hash is
	// stored. Delivery to the user is out of scope here.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) (string, error)
	UpdatePassword(ctx context.Context, user *domain.User, current, password, passwordConfirm string) (string, error)
}
