package generate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/interfaces"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/parser"
	"github.com/m-mizutani/mealgen/pkg/prompt"
	"github.com/m-mizutani/mealgen/pkg/usecase/enrich"
	"github.com/m-mizutani/mealgen/pkg/utils/logging"
)

// UseCase runs the generation pipeline: profile lookup, enrichment, prompt
// assembly and the model call
type UseCase struct {
	source    interfaces.ProfileSource
	completer interfaces.Completer
	recorder  interfaces.MealRecorder
	now       func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithRecorder saves a summary of every parsed meal
func WithRecorder(recorder interfaces.MealRecorder) Option {
	return func(uc *UseCase) {
		uc.recorder = recorder
	}
}

// WithNow replaces the clock used for meal entries
func WithNow(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new generate UseCase instance
func New(
	source interfaces.ProfileSource,
	completer interfaces.Completer,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		source:    source,
		completer: completer,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Inspect returns the enrichment and the prompt that GenerateOne would send,
// without calling the model
func (u *UseCase) Inspect(ctx context.Context, userID model.UserID) (*enrich.Context, string, error) {
	profile, err := u.fetchProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	enriched := enrich.Enrich(profile)
	return enriched, prompt.Build(enrich.RenderContextFragment(enriched)), nil
}

// GenerateOne generates one meal and returns the model reply verbatim
func (u *UseCase) GenerateOne(ctx context.Context, userID model.UserID) (string, error) {
	enriched, p, err := u.Inspect(ctx, userID)
	if err != nil {
		return "", err
	}

	logger := logging.From(ctx).With("user_id", userID)
	logger.Debug("enriched context",
		"summary", enriched.PastMealsSummary,
		"variety_needs", enriched.VarietyNeeds,
		"recent_meals", enriched.RecentMeals(),
		"prompt_bytes", len(p),
	)

	text, err := u.completer.Complete(ctx, p)
	if err != nil {
		return "", goerr.Wrap(errors.Join(model.ErrUpstream, err), "model call failed", goerr.V("user_id", userID))
	}
	if strings.TrimSpace(text) == "" {
		return "", goerr.Wrap(model.ErrUpstream, "model returned empty response", goerr.V("user_id", userID))
	}

	return text, nil
}

// GenerateMany calls GenerateOne count times in order. History is re-read for
// every call; the first failure aborts the batch.
func (u *UseCase) GenerateMany(ctx context.Context, userID model.UserID, count int) ([]string, error) {
	if count < 1 {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "count must be at least 1", goerr.V("count", count))
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	replies := make([]string, 0, count)
	for i := 0; i < count; i++ {
		text, err := u.GenerateOne(ctx, userID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate meal",
				goerr.V("index", i+1),
				goerr.V("count", count),
				goerr.V("user_id", userID))
		}
		replies = append(replies, text)
	}

	return replies, nil
}

// GenerateMeal generates one meal and parses the reply
func (u *UseCase) GenerateMeal(ctx context.Context, userID model.UserID) (*model.Meal, string, error) {
	text, err := u.GenerateOne(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	meal := parser.Parse(text)
	u.record(ctx, userID, meal)
	return meal, text, nil
}

// GenerateMeals generates count meals and parses each reply, in call order
func (u *UseCase) GenerateMeals(ctx context.Context, userID model.UserID, count int) ([]*model.Meal, error) {
	replies, err := u.GenerateMany(ctx, userID, count)
	if err != nil {
		return nil, err
	}

	meals := make([]*model.Meal, 0, len(replies))
	for _, text := range replies {
		meal := parser.Parse(text)
		u.record(ctx, userID, meal)
		meals = append(meals, meal)
	}
	return meals, nil
}

// record saves a meal summary. Failures are logged only; the meal was
// generated regardless.
func (u *UseCase) record(ctx context.Context, userID model.UserID, meal *model.Meal) {
	logger := logging.From(ctx).With("user_id", userID)

	if meal.IsEmpty() {
		logger.Warn("model reply did not follow the output format")
		return
	}
	if u.recorder == nil {
		return
	}

	entry := model.NewMealEntry(userID, meal, u.now())
	if err := u.recorder.SaveMeal(ctx, entry); err != nil {
		logger.Error("failed to record meal", logging.ErrAttr(err), "meal_id", entry.ID)
		return
	}
	logger.Debug("meal recorded", "meal_id", entry.ID, "recipe_name", entry.RecipeName)
}

func (u *UseCase) fetchProfile(ctx context.Context, userID model.UserID) (*model.Profile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	profile, err := u.source.FetchProfile(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch profile", goerr.V("user_id", userID))
	}
	return profile, nil
}

func validateUserID(userID model.UserID) error {
	if strings.TrimSpace(string(userID)) == "" {
		return goerr.Wrap(model.ErrInvalidArgument, "user ID cannot be empty")
	}
	return nil
}
