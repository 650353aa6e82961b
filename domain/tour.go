package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Difficulty string

const (
	Easy      Difficulty = "easy"
	Medium    Difficulty = "medium"
	Difficult Difficulty = "difficult"
)

type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

type Tour struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name            string               `bson:"name" json:"name" validate:"required,min=10,max=40"`
	Slug            string               `bson:"slug,omitempty" json:"slug,omitempty"`
	Duration        int                  `bson:"duration" json:"duration" validate:"required,gt=0"`
	MaxGroupSize    int                  `bson:"maxGroupSize" json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      Difficulty           `bson:"difficulty" json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64              `bson:"ratingsAverage" json:"ratingsAverage"`
	RatingsQuantity int                  `bson:"ratingsQuantity" json:"ratingsQuantity"`
	Price           float64              `bson:"price" json:"price" validate:"required,gt=0"`
	PriceDiscount   float64              `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty"`
	Summary         string               `bson:"summary" json:"summary" validate:"required"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string               `bson:"imageCover" json:"imageCover" validate:"required"`
	Images          []string             `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt       primitive.DateTime   `bson:"createdAt" json:"createdAt"`
	StartDates      []primitive.DateTime `bson:"startDates,omitempty" json:"startDates,omitempty"`
	SecretTour      bool                 `bson:"secretTour,omitempty" json:"secretTour,omitempty"`
	StartLocation   *Location            `bson:"startLocation,omitempty" json:"startLocation,omitempty"`
	Locations       []Location           `bson:"locations,omitempty" json:"locations,omitempty"`
	Guides          []primitive.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`

	// Filled by the $lookup stages on detail reads; never stored.
	GuidesInfo []User   `bson:"guidesInfo,omitempty" json:"guidesInfo,omitempty"`
	Reviews    []Review `bson:"reviews,omitempty" json:"reviews,omitempty"`
}

const DefaultRatingsAverage = 4.5

// ApplyDefaults fills server-assigned fields before the first insert.
// The ratings pair always starts at the schema default; it is owned by
// the rating maintainer afterwards.
func (t *Tour) ApplyDefaults() {
	t.RatingsAverage = DefaultRatingsAverage
	t.RatingsQuantity = 0
	t.Slug = Slugify(t.Name)
	if t.CreatedAt == 0 {
		t.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	}
}

func (t *Tour) Validate(validate Validator) error {
	if err := validate.Struct(t); err != nil {
		return err
	}
	if t.PriceDiscount != 0 && t.PriceDiscount >= t.Price {
		return &ValidationError{Field: "priceDiscount", Message: "discount price should be below regular price"}
	}
	return nil
}

// TourPatchRules are the per-field constraints checked on partial update.
var TourPatchRules = map[string]string{
	"name":         "min=10,max=40",
	"duration":     "gt=0",
	"maxGroupSize": "gt=0",
	"difficulty":   "oneof=easy medium difficult",
	"price":        "gt=0",
	"summary":      "required",
	"imageCover":   "required",
}

// TourProtectedFields are never writable through the public API.
// The ratings pair belongs to the rating maintainer alone.
var TourProtectedFields = []string{"ratingsAverage", "ratingsQuantity", "slug", "createdAt", "guidesInfo", "reviews"}

func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
