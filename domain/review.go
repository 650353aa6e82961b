package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Review    string             `bson:"review" json:"review" validate:"required"`
	Rating    float64            `bson:"rating" json:"rating" validate:"min=1,max=5"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`

	// Filled by the $lookup stage on reads; never stored.
	UserInfo *User `bson:"userInfo,omitempty" json:"userInfo,omitempty"`
}

const DefaultReviewRating = 4.5

func (r *Review) ApplyDefaults() {
	if r.Rating == 0 {
		r.Rating = DefaultReviewRating
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	}
}

func (r *Review) Validate(validate Validator) error {
	if r.Tour.IsZero() {
		return &ValidationError{Field: "tour", Message: "review must belong to a tour"}
	}
	if r.User.IsZero() {
		return &ValidationError{Field: "user", Message: "review must belong to a user"}
	}
	return validate.Struct(r)
}

var ReviewPatchRules = map[string]string{
	"review": "required",
	"rating": "min=1,max=5",
}

// The tour reference is immutable after creation and the user reference
// always comes from the authenticated identity.
var ReviewProtectedFields = []string{"tour", "user", "createdAt", "userInfo"}
