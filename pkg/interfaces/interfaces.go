package interfaces

import (
	"context"

	"github.com/m-mizutani/mealgen/pkg/model"
)

// ProfileSource provides user profiles for generation
type ProfileSource interface {
	// FetchProfile retrieves a profile by user ID. Unknown IDs yield model.ErrNotFound.
	FetchProfile(ctx context.Context, id model.UserID) (*model.Profile, error)
}

// MealRecorder keeps summaries of generated meals
type MealRecorder interface {
	// SaveMeal stores the entry and appends its recipe name to the user's history
	SaveMeal(ctx context.Context, entry *model.MealEntry) error

	// ListMeals retrieves entries of a user, oldest first
	ListMeals(ctx context.Context, id model.UserID) ([]*model.MealEntry, error)
}

// Completer sends a prompt to a generative model and returns its text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
