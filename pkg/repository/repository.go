package repository

import (
	"context"

	"github.com/m-mizutani/mealgen/pkg/interfaces"
	"github.com/m-mizutani/mealgen/pkg/model"
)

// Repository is a profile store that also records generated meals
type Repository interface {
	interfaces.ProfileSource
	interfaces.MealRecorder

	// PutProfile creates or replaces a profile
	PutProfile(ctx context.Context, profile *model.Profile) error

	// Close releases the underlying connection
	Close() error
}
