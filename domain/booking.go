package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Booking struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Price     float64            `bson:"price" json:"price" validate:"required,gt=0"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
	Paid      bool               `bson:"paid" json:"paid"`
}

func (b *Booking) ApplyDefaults() {
	b.Paid = true
	if b.CreatedAt == 0 {
		b.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	}
}

func (b *Booking) Validate(validate Validator) error {
	if b.Tour.IsZero() {
		return &ValidationError{Field: "tour", Message: "booking must belong to a tour"}
	}
	if b.User.IsZero() {
		return &ValidationError{Field: "user", Message: "booking must belong to a user"}
	}
	return validate.Struct(b)
}

var BookingPatchRules = map[string]string{
	"price": "gt=0",
}

var BookingProtectedFields = []string{"createdAt"}
