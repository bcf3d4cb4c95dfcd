package model

import (
	"time"

	"github.com/google/uuid"
)

// Meal is a recipe parsed from a model reply. Instructions are in cooking order.
type Meal struct {
	RecipeName   string   `json:"recipe_name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// IsEmpty reports whether nothing could be parsed from the reply
func (m *Meal) IsEmpty() bool {
	return m.RecipeName == "" && len(m.Ingredients) == 0 && len(m.Instructions) == 0
}

type MealID string

// NewMealID generates a new unique MealID
func NewMealID() MealID {
	return MealID(uuid.New().String())
}

// MealEntry is the summary of a generated meal kept in a user's record
type MealEntry struct {
	ID               MealID    `firestore:"id" json:"id"`
	UserID           UserID    `firestore:"user_id" json:"user_id"`
	RecipeName       string    `firestore:"recipe_name" json:"recipe_name"`
	IngredientsCount int       `firestore:"ingredients_count" json:"ingredients_count"`
	InstructionCount int       `firestore:"instruction_count" json:"instruction_count"`
	GeneratedAt      time.Time `firestore:"generated_at" json:"generated_at"`
}

// NewMealEntry summarizes a parsed meal for the given user
func NewMealEntry(userID UserID, meal *Meal, now time.Time) *MealEntry {
	return &MealEntry{
		ID:               NewMealID(),
		UserID:           userID,
		RecipeName:       meal.RecipeName,
		IngredientsCount: len(meal.Ingredients),
		InstructionCount: len(meal.Instructions),
		GeneratedAt:      now,
	}
}

// Usage is the token consumption of a single model call
type Usage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
