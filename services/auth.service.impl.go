package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/utils"
)

const resetTokenTTL = 10 * time.Minute

type AuthServiceImpl struct {
	userService UserService
	validate    *validator.Validate
	cfg         *config.Config
	logger      *logrus.Logger
	Tracer      trace.Tracer
}

func NewAuthServiceImpl(userService UserService, validate *validator.Validate, cfg *config.Config, logger *logrus.Logger, tr trace.Tracer) AuthService {
	return &AuthServiceImpl{userService, validate, cfg, logger, tr}
}

func (s *AuthServiceImpl) Signup(ctx context.Context, input *domain.SignupInput) (*domain.User, string, error) {
	ctx, span := s.Tracer.Start(ctx, "authService.Signup")
	defer span.End()

	if err := s.validate.Struct(input); err != nil {
		return nil, "", toValidationError(err)
	}
	if input.Password != input.PasswordConfirm {
		return nil, "", &domain.ValidationError{Field: "passwordConfirm", Message: "passwords are not the same"}
	}

	// The uniqueness probe goes through the guarded read path, so a
	// soft-deleted account does not block the signup.
	existing, err := s.userService.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", &domain.ConflictError{Relationship: "email"}
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:     input.Name,
		Email:    input.Email,
		Photo:    input.Photo,
		Role:     domain.RoleUser,
		Password: hashed,
		Active:   true,
	}
	created, err := s.userService.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := utils.CreateToken(created.ID.Hex(), s.cfg.SecretKey, s.cfg.TokenExpires)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, input *domain.LoginInput) (*domain.User, string, error) {
	ctx, span := s.Tracer.Start(ctx, "authService.Login")
	defer span.End()

	if err := s.validate.Struct(input); err != nil {
		return nil, "", toValidationError(err)
	}

	user, err := s.userService.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || utils.VerifyPassword(user.Password, input.Password) != nil {
		// same message for both cases so login does not leak which emails
		// exist
		return nil, "", &domain.ValidationError{Field: "email", Message: "incorrect email or password"}
	}

	token, err := utils.CreateToken(user.ID.Hex(), s.cfg.SecretKey, s.cfg.TokenExpires)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) (string, error) {
	ctx, span := s.Tracer.Start(ctx, "authService.ForgotPassword")
	defer span.End()

	user, err := s.userService.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrNotFound()
	}

	plain, hashed, err := utils.CreatePasswordResetToken()
	if err != nil {
		return "", err
	}
	if err := s.userService.SetResetToken(ctx, user.ID, hashed, time.Now().Add(resetTokenTTL)); err != nil {
		return "", err
	}

	// Mail delivery is out of scope; the token is logged for the operator.
	s.logger.WithFields(logrus.Fields{"path": "services/auth", "user": user.ID.Hex()}).
		Infof("password reset token issued: %s", plain)
	return plain, nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (string, error) {
	ctx, span := s.Tracer.Start(ctx, "authService.ResetPassword")
	defer span.End()

	if password != passwordConfirm {
		return "", &domain.ValidationError{Field: "passwordConfirm", Message: "passwords are not the same"}
	}
	if err := s.validate.Var(password, "required,min=8"); err != nil {
		return "", &domain.ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	user, err := s.userService.FindByResetToken(ctx, utils.HashResetToken(token))
	if err != nil {
		return "", err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}
	if err := s.userService.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return "", err
	}

	return utils.CreateToken(user.ID.Hex(), s.cfg.SecretKey, s.cfg.TokenExpires)
}

func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, user *domain.User, current, password, passwordConfirm string) (string, error) {
	ctx, span := s.Tracer.Start(ctx, "authService.UpdatePassword")
	defer span.End()

	if utils.VerifyPassword(user.Password, current) != nil {
		return "", &domain.ValidationError{Field: "passwordCurrent", Message: "your current password is wrong"}
	}
	if password != passwordConfirm {
		return "", &domain.ValidationError{Field: "passwordConfirm", Message: "passwords are not the same"}
	}
	if err := s.validate.Var(password, "required,min=8"); err != nil {
		return "", &domain.ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}
	if err := s.userService.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return "", err
	}

	return utils.CreateToken(user.ID.Hex(), s.cfg.SecretKey, s.cfg.TokenExpires)
}
