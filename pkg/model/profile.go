package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

type UserID string

// Variety is the user's appetite for novelty between generated meals
type Variety string

const (
	VarietyLow    Variety = "low"
	VarietyMedium Variety = "medium"
	VarietyHigh   Variety = "high"
)

const (
	DefaultPlanLength = 7
	DefaultVariety    = VarietyHigh
)

// Normalize lowercases the variety and falls back to high when it is unset
func (v Variety) Normalize() Variety {
	n := Variety(strings.ToLower(strings.TrimSpace(string(v))))
	if n == "" {
		return DefaultVariety
	}
	return n
}

// Preferences holds the meal plan settings of a user
type Preferences struct {
	Length  int     `firestore:"length" json:"length" yaml:"length"`
	Variety Variety `firestore:"variety" json:"variety" yaml:"variety"`
}

// DefaultPreferences returns the settings applied when a store has none for the user
func DefaultPreferences() Preferences {
	return Preferences{
		Length:  DefaultPlanLength,
		Variety: DefaultVariety,
	}
}

// Profile is a user's dietary data and meal history. PastMealHistory is in
// chronological order, the most recent meal last.
type Profile struct {
	UserID              UserID      `firestore:"-" json:"user_id" yaml:"user_id"`
	DietaryRestrictions string      `firestore:"dietary_restrictions" json:"dietary_restrictions" yaml:"dietary_restrictions"`
	NutritionGoals      string      `firestore:"nutrition_goals" json:"nutrition_goals" yaml:"nutrition_goals"`
	FavoriteFoods       string      `firestore:"favorite_foods" json:"favorite_foods" yaml:"favorite_foods"`
	PastMealHistory     []string    `firestore:"past_meal_history" json:"past_meal_history" yaml:"past_meal_history"`
	Preferences         Preferences `firestore:"meal_plan_preferences" json:"meal_plan_preferences" yaml:"meal_plan_preferences"`
}

// Validate checks if the profile is usable for generation
func (p *Profile) Validate() error {
	if strings.TrimSpace(string(p.UserID)) == "" {
		return goerr.Wrap(ErrInvalidArgument, "user ID is empty")
	}
	if p.Preferences.Length < 1 {
		return goerr.Wrap(ErrInvalidArgument, "meal plan length must be at least 1",
			goerr.V("user_id", p.UserID),
			goerr.V("length", p.Preferences.Length))
	}
	return nil
}

// ApplyDefaults fills preferences a store left unset
func (p *Profile) ApplyDefaults() {
	if p.Preferences.Length == 0 {
		p.Preferences.Length = DefaultPlanLength
	}
	p.Preferences.Variety = p.Preferences.Variety.Normalize()
}
