package services

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
)

// BookingService is plain factory CRUD; the "my bookings" view is just a
// user-scoped FindAll.
type BookingService interface {
	ModelService[domain.Booking]
}

func NewBookingServiceImpl(collection *mongo.Collection, validate *validator.Validate, tr trace.Tracer) BookingService {
	return NewMongoModelServiceImpl[domain.Booking](collection, ModelConfig[domain.Booking]{
		Resource:     "booking",
		ConflictName: "booking",
		PatchRules:   domain.BookingPatchRules,
		Protected:    domain.BookingProtectedFields,
		Prepare:      func(b *domain.Booking) { b.ApplyDefaults() },
		ValidateDoc:  func(b *domain.Booking, v domain.Validator) error { return b.Validate(v) },
	}, validate, tr)
}
