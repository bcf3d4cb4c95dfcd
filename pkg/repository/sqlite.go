package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    dietary_restrictions TEXT NOT NULL,
    nutrition_goals TEXT NOT NULL,
    favorite_foods TEXT NOT NULL,
    plan_length INTEGER NOT NULL,
    variety TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meal_history (
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (user_id, position),
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS meals (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    recipe_name TEXT NOT NULL,
    ingredients_count INTEGER NOT NULL,
    instruction_count INTEGER NOT NULL,
    generated_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_meals_user_generated ON meals(user_id, generated_at);
`

// sqliteTimeLayout has fixed width so that text order is chronological
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a single-file profile store
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the database at dbPath
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("dir", dir))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.V("path", dbPath))
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) FetchProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	profile := &model.Profile{UserID: id}

	row := s.db.QueryRowContext(ctx, `
        SELECT dietary_restrictions, nutrition_goals, favorite_foods, plan_length, variety
        FROM users WHERE user_id = ?`, string(id))

	var variety string
	err := row.Scan(
		&profile.DietaryRestrictions,
		&profile.NutritionGoals,
		&profile.FavoriteFoods,
		&profile.Preferences.Length,
		&variety,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "user not found in sqlite", goerr.V("user_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user", goerr.V("user_id", id))
	}
	profile.Preferences.Variety = model.Variety(variety)

	rows, err := s.db.QueryContext(ctx, `
        SELECT name FROM meal_history WHERE user_id = ? ORDER BY position`, string(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query meal history", goerr.V("user_id", id))
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, goerr.Wrap(err, "failed to scan meal history", goerr.V("user_id", id))
		}
		profile.PastMealHistory = append(profile.PastMealHistory, name)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read meal history", goerr.V("user_id", id))
	}

	profile.ApplyDefaults()
	return profile, nil
}

func (s *SQLite) PutProfile(ctx context.Context, profile *model.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	prefs := profile.Preferences
	if prefs.Length == 0 {
		prefs.Length = model.DefaultPlanLength
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO users (user_id, dietary_restrictions, nutrition_goals, favorite_foods, plan_length, variety)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            dietary_restrictions = excluded.dietary_restrictions,
            nutrition_goals = excluded.nutrition_goals,
            favorite_foods = excluded.favorite_foods,
            plan_length = excluded.plan_length,
            variety = excluded.variety`,
		string(profile.UserID),
		profile.DietaryRestrictions,
		profile.NutritionGoals,
		profile.FavoriteFoods,
		prefs.Length,
		string(prefs.Variety.Normalize()),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert user", goerr.V("user_id", profile.UserID))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_history WHERE user_id = ?`, string(profile.UserID)); err != nil {
		return goerr.Wrap(err, "failed to clear meal history", goerr.V("user_id", profile.UserID))
	}

	for i, name := range profile.PastMealHistory {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO meal_history (user_id, position, name) VALUES (?, ?, ?)`,
			string(profile.UserID), i, name); err != nil {
			return goerr.Wrap(err, "failed to insert meal history", goerr.V("user_id", profile.UserID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit profile", goerr.V("user_id", profile.UserID))
	}
	return nil
}

func (s *SQLite) SaveMeal(ctx context.Context, entry *model.MealEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE user_id = ?`, string(entry.UserID)).Scan(&exists)
	if err != nil {
		return goerr.Wrap(err, "failed to query user", goerr.V("user_id", entry.UserID))
	}
	if exists == 0 {
		return goerr.Wrap(model.ErrNotFound, "user not found in sqlite", goerr.V("user_id", entry.UserID))
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO meals (id, user_id, recipe_name, ingredients_count, instruction_count, generated_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		string(entry.ID),
		string(entry.UserID),
		entry.RecipeName,
		entry.IngredientsCount,
		entry.InstructionCount,
		entry.GeneratedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert meal", goerr.V("meal_id", entry.ID))
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO meal_history (user_id, position, name)
        SELECT ?, COALESCE(MAX(position) + 1, 0), ? FROM meal_history WHERE user_id = ?`,
		string(entry.UserID), entry.RecipeName, string(entry.UserID))
	if err != nil {
		return goerr.Wrap(err, "failed to append meal history", goerr.V("user_id", entry.UserID))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit meal", goerr.V("meal_id", entry.ID))
	}
	return nil
}

func (s *SQLite) ListMeals(ctx context.Context, id model.UserID) ([]*model.MealEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, recipe_name, ingredients_count, instruction_count, generated_at
        FROM meals WHERE user_id = ? ORDER BY generated_at, rowid`, string(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query meals", goerr.V("user_id", id))
	}
	defer rows.Close()

	var entries []*model.MealEntry
	for rows.Next() {
		entry := &model.MealEntry{UserID: id}
		var mealID, generatedAt string
		if err := rows.Scan(&mealID, &entry.RecipeName, &entry.IngredientsCount, &entry.InstructionCount, &generatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan meal", goerr.V("user_id", id))
		}

		entry.ID = model.MealID(mealID)
		entry.GeneratedAt, err = time.Parse(sqliteTimeLayout, generatedAt)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid generated_at", goerr.V("meal_id", mealID))
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read meals", goerr.V("user_id", id))
	}

	return entries, nil
}
