package domain

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validTour() *Tour {
	return &Tour{
		Name:         "The Forest Hiker Tour",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   Easy,
		Price:        497,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestApplyDefaultsSetsRatingsAndSlug(t *testing.T) {
	tour := validTour()
	tour.RatingsAverage = 9.9
	tour.RatingsQuantity = 42

	tour.ApplyDefaults()

	assert.Equal(t, DefaultRatingsAverage, tour.RatingsAverage)
	assert.Equal(t, 0, tour.RatingsQuantity)
	assert.Equal(t, "the-forest-hiker-tour", tour.Slug)
	assert.NotZero(t, tour.CreatedAt)
}

func TestValidateRejectsDiscountAbovePrice(t *testing.T) {
	tour := validTour()
	tour.PriceDiscount = 600

	err := tour.Validate(validator.New())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidateAcceptsDiscountBelowPrice(t *testing.T) {
	tour := validTour()
	tour.PriceDiscount = 100

	assert.NoError(t, tour.Validate(validator.New()))
}

func TestValidateRejectsShortName(t *testing.T) {
	tour := validTour()
	tour.Name = "Too short"

	assert.Error(t, tour.Validate(validator.New()))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "the-sea-explorer", Slugify("The Sea Explorer"))
	assert.Equal(t, "tour-no-5", Slugify("  Tour: No. 5!  "))
	assert.Equal(t, "snow-adventurer", Slugify("Snow_Adventurer"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestChangedPasswordAfter(t *testing.T) {
	user := &User{}
	assert.False(t, user.ChangedPasswordAfter(time.Now().Unix()), "never changed")

	user.PasswordChangedAt = primitive.NewDateTimeFromTime(time.Now().Add(-time.Hour))
	assert.False(t, user.ChangedPasswordAfter(time.Now().Unix()), "changed before token issue")

	user.PasswordChangedAt = primitive.NewDateTimeFromTime(time.Now().Add(time.Hour))
	assert.True(t, user.ChangedPasswordAfter(time.Now().Unix()), "changed after token issue")
}
