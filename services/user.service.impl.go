package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
)

type UserServiceImpl struct {
	*MongoModelServiceImpl[domain.User]
	collection *mongo.Collection
}

func NewUserServiceImpl(collection *mongo.Collection, validate *validator.Validate, tr trace.Tracer) UserService {
	base := NewMongoModelServiceImpl[domain.User](collection, ModelConfig[domain.User]{
		Resource:     "user",
		ConflictName: "email",
		Guards:       []QueryGuard{UserVisibilityGuard},
		PatchRules:   domain.UserPatchRules,
		Protected:    domain.UserProtectedFields,
	}, validate, tr)
	return &UserServiceImpl{base, collection}
}

func (s *UserServiceImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := s.Tracer.Start(ctx, "userService.FindByEmail")
	defer span.End()

	filter := applyGuards(bson.M{"email": strings.ToLower(email)}, s.cfg.Guards)

	var user domain.User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &user, nil
}

func (s *UserServiceImpl) FindByResetToken(ctx context.Context, hashedToken string) (*domain.User, error) {
	ctx, span := s.Tracer.Start(ctx, "userService.FindByResetToken")
	defer span.End()

	filter := applyGuards(bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": primitive.NewDateTimeFromTime(time.Now())},
	}, s.cfg.Guards)

	var user domain.User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound()
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("finding user by reset token: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a fully prepared user document. Uniqueness of the email
// is probed through FindByEmail by the auth service rather than a unique
// index, because a soft-deleted user must not block a fresh signup.
func (s *UserServiceImpl) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := s.Tracer.Start(ctx, "userService.CreateUser")
	defer span.End()

	user.Email = strings.ToLower(user.Email)

	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	var created domain.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reading back created user: %w", err)
	}
	return &created, nil
}

func (s *UserServiceImpl) UpdatePassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) error {
	ctx, span := s.Tracer.Start(ctx, "userService.UpdatePassword")
	defer span.End()

	// passwordChangedAt sits one second in the past so a token issued in
	// the same instant still validates.
	update := bson.M{
		"$set": bson.M{
			"password":          hashedPassword,
			"passwordChangedAt": primitive.NewDateTimeFromTime(time.Now().Add(-time.Second)),
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("updating password: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound()
	}
	return nil
}

func (s *UserServiceImpl) SetResetToken(ctx context.Context, id primitive.ObjectID, hashedToken string, expires time.Time) error {
	ctx, span := s.Tracer.Start(ctx, "userService.SetResetToken")
	defer span.End()

	update := bson.M{"$set": bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": primitive.NewDateTimeFromTime(expires),
	}}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("setting reset token: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound()
	}
	return nil
}

// Deactivate is the soft delete behind deleteMe: the document stays in the
// collection but every guarded read stops seeing it.
func (s *UserServiceImpl) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := s.Tracer.Start(ctx, "userService.Deactivate")
	defer span.End()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deactivating user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound()
	}
	return nil
}
