package enrich

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/mealgen/pkg/model"
)

// RecencyWindow is the number of most recent meals shown to the model as
// examples to avoid
const RecencyWindow = 2

const noRecentMeals = "None"

const fragmentTemplate = `AI Meal Assistant Context - Generate ONE different meal:
Dietary Restrictions: %s
Nutrition Goals: %s
Favorite Foods: %s
Previously Suggested: %s
Task: Create a meal different from the above. Introduce new cuisines or combinations.`

// Context is a profile together with the analysis of its meal history
type Context struct {
	UserID              model.UserID
	DietaryRestrictions string
	NutritionGoals      string
	FavoriteFoods       string
	Preferences         model.Preferences

	// PastMealsSummary and VarietyNeeds are computed over the full history
	PastMealsSummary string
	VarietyNeeds     string

	// PastMeals is the full history; only the recency window is rendered
	PastMeals []string
}

// Enrich analyzes the profile's history. It does not truncate anything.
func Enrich(profile *model.Profile) *Context {
	variety := profile.Preferences.Variety
	if variety == "" {
		variety = model.DefaultVariety
	}

	return &Context{
		UserID:              profile.UserID,
		DietaryRestrictions: profile.DietaryRestrictions,
		NutritionGoals:      profile.NutritionGoals,
		FavoriteFoods:       profile.FavoriteFoods,
		Preferences:         profile.Preferences,
		PastMealsSummary:    SummarizePatterns(profile.PastMealHistory),
		VarietyNeeds:        AssessVarietyNeed(profile.PastMealHistory, variety),
		PastMeals:           profile.PastMealHistory,
	}
}

// RecentMeals returns at most RecencyWindow of the latest meals, oldest first
func (c *Context) RecentMeals() []string {
	if len(c.PastMeals) <= RecencyWindow {
		return c.PastMeals
	}
	return c.PastMeals[len(c.PastMeals)-RecencyWindow:]
}

// RenderContextFragment renders the prompt fragment for the model. The summary
// and variety texts are left out to keep the output token budget.
func RenderContextFragment(c *Context) string {
	recent := noRecentMeals
	if meals := c.RecentMeals(); len(meals) > 0 {
		recent = strings.Join(meals, ", ")
	}

	fragment := fmt.Sprintf(fragmentTemplate,
		c.DietaryRestrictions,
		c.NutritionGoals,
		c.FavoriteFoods,
		recent,
	)
	return strings.TrimSpace(fragment)
}
