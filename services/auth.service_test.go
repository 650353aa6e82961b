package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/domain"
	"github.com/thisIsAskari/natours/utils"
)

// fakeUserStore implements UserService in memory with the same guarded
// visibility semantics as the Mongo implementation.
type fakeUserStore struct {
	users []*domain.User
}

func (f *fakeUserStore) FindAll(context.Context, *APIFeatures, bson.M) ([]domain.User, error) {
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range f.users {
		if user.ID.Hex() == id && user.Active {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound()
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	return f.CreateUser(context.Background(), user)
}

func (f *fakeUserStore) UpdateByID(context.Context, string, bson.M) (*domain.User, error) {
	return nil, domain.ErrNotFound()
}

func (f *fakeUserStore) DeleteByID(context.Context, string) error { return nil }

func (f *fakeUserStore) Aggregate(context.Context, mongo.Pipeline, interface{}) error {
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email && user.Active {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByResetToken(_ context.Context, hashedToken string) (*domain.User, error) {
	for _, user := range f.users {
		if user.PasswordResetToken == hashedToken && user.Active &&
			user.PasswordResetExpires.Time().After(time.Now()) {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound()
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	user.ID = primitive.NewObjectID()
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id primitive.ObjectID, hashedPassword string) error {
	for _, user := range f.users {
		if user.ID == id {
			user.Password = hashedPassword
			user.PasswordChangedAt = primitive.NewDateTimeFromTime(time.Now().Add(-time.Second))
			user.PasswordResetToken = ""
			user.PasswordResetExpires = 0
			return nil
		}
	}
	return domain.ErrNotFound()
}

func (f *fakeUserStore) SetResetToken(_ context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	for _, user := range f.users {
		if user.ID == id {
			user.PasswordResetToken = hashedToken
			user.PasswordResetExpires = primitive.NewDateTimeFromTime(expires)
			return nil
		}
	}
	return domain.ErrNotFound()
}

func (f *fakeUserStore) Deactivate(_ context.Context, id primitive.ObjectID) error {
	for _, user := range f.users {
		if user.ID == id {
			user.Active = false
			return nil
		}
	}
	return domain.ErrNotFound()
}

func newAuthFixture() (*fakeUserStore, AuthService) {
	store := &fakeUserStore{}
	cfg := &config.Config{SecretKey: "test-only-secret", TokenExpires: time.Hour}
	auth := NewAuthServiceImpl(store, validator.New(), cfg, quietLogger(), trace.NewNoopTracerProvider().Tracer("test"))
	return store, auth
}

func signupInput(email string) *domain.SignupInput {
	return &domain.SignupInput{
		Name:            "Jonas Schmedtmann",
		Email:           email,
		Password:        "pass1234abc",
		PasswordConfirm: "pass1234abc",
	}
}

func TestSignupCreatesActiveUserWithToken(t *testing.T) {
	_, auth := newAuthFixture()

	user, token, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	assert.True(t, user.Active)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "pass1234abc", user.Password, "password must be stored hashed")

	sub, _, err := utils.ValidateToken(token, "test-only-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), sub)
}

func TestSignupRejectsPasswordMismatch(t *testing.T) {
	_, auth := newAuthFixture()

	input := signupInput("jonas@example.com")
	input.PasswordConfirm = "something else"
	_, _, err := auth.Signup(context.Background(), input)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestSignupRejectsDuplicateActiveEmail(t *testing.T) {
	_, auth := newAuthFixture()

	_, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	_, _, err = auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestSignupAllowsEmailOfDeactivatedAccount(t *testing.T) {
	store, auth := newAuthFixture()

	first, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)
	first.Active = false

	second, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.users, 2)
}

func TestLoginWithCorrectCredentials(t *testing.T) {
	_, auth := newAuthFixture()
	created, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	user, token, err := auth.Login(context.Background(), &domain.LoginInput{
		Email: "jonas@example.com", Password: "pass1234abc",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLoginFailsUniformlyForBadEmailAndBadPassword(t *testing.T) {
	_, auth := newAuthFixture()
	_, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	_, _, errUnknown := auth.Login(context.Background(), &domain.LoginInput{
		Email: "nobody@example.com", Password: "pass1234abc",
	})
	_, _, errWrongPass := auth.Login(context.Background(), &domain.LoginInput{
		Email: "jonas@example.com", Password: "wrong password",
	})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error(), "login must not leak which emails exist")
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	_, auth := newAuthFixture()
	user, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)
	user.Active = false

	_, _, err = auth.Login(context.Background(), &domain.LoginInput{
		Email: "jonas@example.com", Password: "pass1234abc",
	})
	assert.Error(t, err)
}

func TestLoginRejectsAccountDeactivatedThroughStore(t *testing.T) {
	store, auth := newAuthFixture()
	user, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	require.NoError(t, store.Deactivate(context.Background(), user.ID))
	assert.False(t, user.Active)

	_, _, err = auth.Login(context.Background(), &domain.LoginInput{
		Email: "jonas@example.com", Password: "pass1234abc",
	})
	assert.Error(t, err)
}

func TestForgotPasswordIssuesUsableResetToken(t *testing.T) {
	store, auth := newAuthFixture()
	user, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	plain, err := auth.ForgotPassword(context.Background(), "jonas@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, plain)

	// Only the digest is stored.
	assert.Equal(t, utils.HashResetToken(plain), user.PasswordResetToken)
	assert.True(t, user.PasswordResetExpires.Time().After(time.Now()))
	assert.Len(t, store.users, 1)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	_, auth := newAuthFixture()

	_, err := auth.ForgotPassword(context.Background(), "nobody@example.com")
	assert.True(t, domain.IsNotFound(err))
}

func TestResetPasswordChangesCredentialAndClearsToken(t *testing.T) {
	_, auth := newAuthFixture()
	user, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	plain, err := auth.ForgotPassword(context.Background(), "jonas@example.com")
	require.NoError(t, err)

	token, err := auth.ResetPassword(context.Background(), plain, "newpass9876", "newpass9876")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.PasswordResetToken)

	_, _, err = auth.Login(context.Background(), &domain.LoginInput{
		Email: "jonas@example.com", Password: "newpass9876",
	})
	assert.NoError(t, err)
}

func TestResetPasswordRejectsBogusToken(t *testing.T) {
	_, auth := newAuthFixture()
	_, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	_, err = auth.ResetPassword(context.Background(), "bogus-token", "newpass9876", "newpass9876")
	assert.True(t, domain.IsNotFound(err))
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	store, auth := newAuthFixture()
	user, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	plain, err := auth.ForgotPassword(context.Background(), "jonas@example.com")
	require.NoError(t, err)
	require.NoError(t, store.SetResetToken(context.Background(), user.ID,
		utils.HashResetToken(plain), time.Now().Add(-time.Minute)))

	_, err = auth.ResetPassword(context.Background(), plain, "newpass9876", "newpass9876")
	assert.True(t, domain.IsNotFound(err))
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	_, auth := newAuthFixture()

	_, err := auth.ResetPassword(context.Background(), "whatever", "short", "short")
	assert.True(t, domain.IsValidation(err))
}

func TestUpdatePasswordRequiresCurrentPassword(t *testing.T) {
	_, auth := newAuthFixture()
	user, _, err := auth.Signup(context.Background(), signupInput("jonas@example.com"))
	require.NoError(t, err)

	_, err = auth.UpdatePassword(context.Background(), user, "not the password", "newpass9876", "newpass9876")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	token, err := auth.UpdatePassword(context.Background(), user, "pass1234abc", "newpass9876", "newpass9876")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
