package services

import (
	"github.com/thisIsAskari/natours/domain"
)

// ReviewService layers the rating maintainer's capture/recompute ordering on
// top of the generic CRUD contract. It also serves as the maintainer's
// aggregation source.
type ReviewService interface {
	ModelService[domain.Review]
	ReviewAggregator
}
