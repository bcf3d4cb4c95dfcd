package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/repository"
)

func newTestProfile(id model.UserID) *model.Profile {
	return &model.Profile{
		UserID:              id,
		DietaryRestrictions: "vegan, soy-free",
		NutritionGoals:      "high fiber",
		FavoriteFoods:       "Indian cuisine, legumes",
		PastMealHistory: []string{
			"Chickpea Tikka Masala with Cauliflower Rice",
			"Spiced Lentil & Vegetable Curry",
			"Chickpea Tikka Masala with Cauliflower Rice",
		},
		Preferences: model.Preferences{Length: 4, Variety: model.VarietyMedium},
	}
}

// testRepository runs the same behavior checks against every backend
func testRepository(t *testing.T, repo repository.Repository) {
	ctx := context.Background()
	userID := model.UserID("user-" + time.Now().Format("150405.000000000"))

	t.Run("fetch unknown user", func(t *testing.T) {
		_, err := repo.FetchProfile(ctx, "ghost-user")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("put and fetch keeps history order", func(t *testing.T) {
		profile := newTestProfile(userID)
		gt.NoError(t, repo.PutProfile(ctx, profile))

		got, err := repo.FetchProfile(ctx, userID)
		gt.NoError(t, err)
		gt.Equal(t, got.UserID, userID)
		gt.Equal(t, got.DietaryRestrictions, profile.DietaryRestrictions)
		gt.Equal(t, got.NutritionGoals, profile.NutritionGoals)
		gt.Equal(t, got.FavoriteFoods, profile.FavoriteFoods)
		gt.Equal(t, got.PastMealHistory, profile.PastMealHistory)
		gt.Equal(t, got.Preferences, profile.Preferences)
	})

	t.Run("save meal appends to history", func(t *testing.T) {
		first := &model.MealEntry{
			ID:               model.NewMealID(),
			UserID:           userID,
			RecipeName:       "Smoky Black Bean Tacos",
			IngredientsCount: 8,
			InstructionCount: 5,
			GeneratedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		second := &model.MealEntry{
			ID:               model.NewMealID(),
			UserID:           userID,
			RecipeName:       "Ethiopian Misir Wat",
			IngredientsCount: 10,
			InstructionCount: 6,
			GeneratedAt:      time.Date(2025, 3, 1, 12, 0, 1, 500, time.UTC),
		}
		gt.NoError(t, repo.SaveMeal(ctx, first))
		gt.NoError(t, repo.SaveMeal(ctx, second))

		got, err := repo.FetchProfile(ctx, userID)
		gt.NoError(t, err)
		gt.A(t, got.PastMealHistory).Length(5)
		gt.Equal(t, got.PastMealHistory[3], "Smoky Black Bean Tacos")
		gt.Equal(t, got.PastMealHistory[4], "Ethiopian Misir Wat")

		entries, err := repo.ListMeals(ctx, userID)
		gt.NoError(t, err)
		gt.A(t, entries).Length(2)
		gt.Equal(t, entries[0].ID, first.ID)
		gt.Equal(t, entries[0].IngredientsCount, 8)
		gt.True(t, entries[0].GeneratedAt.Equal(first.GeneratedAt))
		gt.Equal(t, entries[1].RecipeName, "Ethiopian Misir Wat")
	})

	t.Run("save meal for unknown user", func(t *testing.T) {
		err := repo.SaveMeal(ctx, &model.MealEntry{
			ID:          model.NewMealID(),
			UserID:      "ghost-user",
			RecipeName:  "Nothing",
			GeneratedAt: time.Now(),
		})
		gt.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("list meals of user without meals", func(t *testing.T) {
		entries, err := repo.ListMeals(ctx, "ghost-user")
		gt.NoError(t, err)
		gt.A(t, entries).Length(0)
	})
}

func TestMemory(t *testing.T) {
	testRepository(t, repository.NewMemory())
}

func TestSQLite(t *testing.T) {
	repo, err := repository.NewSQLite(filepath.Join(t.TempDir(), "data", "mealgen.db"))
	gt.NoError(t, err)
	defer repo.Close()

	testRepository(t, repo)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mealgen.db")
	ctx := context.Background()

	repo, err := repository.NewSQLite(path)
	gt.NoError(t, err)
	gt.NoError(t, repo.PutProfile(ctx, newTestProfile("USER_REOPEN")))
	gt.NoError(t, repo.Close())

	repo, err = repository.NewSQLite(path)
	gt.NoError(t, err)
	defer repo.Close()

	got, err := repo.FetchProfile(ctx, "USER_REOPEN")
	gt.NoError(t, err)
	gt.A(t, got.PastMealHistory).Length(3)
}

func TestFirestore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.New(projectID, databaseID)
	gt.NoError(t, err)
	defer repo.Close()

	testRepository(t, repo)
}

func TestMemoryFixture(t *testing.T) {
	repo, err := repository.NewMemoryFromFixture()
	gt.NoError(t, err)
	ctx := context.Background()

	user1, err := repo.FetchProfile(ctx, "USER_001")
	gt.NoError(t, err)
	gt.Equal(t, user1.DietaryRestrictions, "vegetarian, gluten-free, nut-free")
	gt.A(t, user1.PastMealHistory).Length(5)
	gt.Equal(t, user1.PastMealHistory[4], "Thai-Inspired Tofu Stir-Fry with Brown Rice")
	gt.Equal(t, user1.Preferences, model.Preferences{Length: 5, Variety: model.VarietyHigh})

	user2, err := repo.FetchProfile(ctx, "USER_002")
	gt.NoError(t, err)
	gt.Equal(t, user2.Preferences.Variety, model.VarietyMedium)
	gt.A(t, user2.PastMealHistory).Length(3)
}

func TestMemoryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - user_id: USER_X
    dietary_restrictions: pescatarian
    nutrition_goals: omega-3
    favorite_foods: sushi
`), 0644))

	repo, err := repository.NewMemoryFromFile(path)
	gt.NoError(t, err)

	got, err := repo.FetchProfile(context.Background(), "USER_X")
	gt.NoError(t, err)
	gt.Equal(t, got.Preferences, model.DefaultPreferences())
	gt.A(t, got.PastMealHistory).Length(0)

	_, err = repository.NewMemoryFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	gt.Error(t, err)
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo, err := repository.NewMemoryFromFixture()
	gt.NoError(t, err)
	ctx := context.Background()

	p, err := repo.FetchProfile(ctx, "USER_001")
	gt.NoError(t, err)
	p.PastMealHistory[0] = "mutated"

	again, err := repo.FetchProfile(ctx, "USER_001")
	gt.NoError(t, err)
	gt.NotEqual(t, again.PastMealHistory[0], "mutated")
}
