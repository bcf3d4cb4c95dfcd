package repository

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionUsers = "users"
	collectionMeals = "meals"

	fieldPastMealHistory = "past_meal_history"
	fieldGeneratedAt     = "generated_at"
)

// Firestore stores profiles as users/{id} documents and meal entries in the
// users/{id}/meals subcollection
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(projectID, databaseID string) (*Firestore, error) {
	ctx := context.Background()
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) userDoc(id model.UserID) *firestore.DocumentRef {
	return r.client.Collection(collectionUsers).Doc(string(id))
}

func (r *Firestore) FetchProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	doc, err := r.userDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "user not found in firestore", goerr.V("user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user document", goerr.V("user_id", id))
	}

	var profile model.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("user_id", id))
	}
	profile.UserID = id
	profile.ApplyDefaults()

	return &profile, nil
}

func (r *Firestore) PutProfile(ctx context.Context, profile *model.Profile) error {
	if _, err := r.userDoc(profile.UserID).Set(ctx, profile); err != nil {
		return goerr.Wrap(err, "failed to put user document", goerr.V("user_id", profile.UserID))
	}
	return nil
}

// SaveMeal stores the entry and appends its recipe name to the user's
// history in one transaction. ArrayUnion is not used because it would drop
// repeated meals and break the repetition rate.
func (r *Firestore) SaveMeal(ctx context.Context, entry *model.MealEntry) error {
	userRef := r.userDoc(entry.UserID)
	mealRef := userRef.Collection(collectionMeals).Doc(string(entry.ID))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(userRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotFound, "user not found in firestore", goerr.V("user_id", entry.UserID))
			}
			return goerr.Wrap(err, "failed to get user document")
		}

		var profile model.Profile
		if err := doc.DataTo(&profile); err != nil {
			return goerr.Wrap(err, "failed to decode user document")
		}

		history := append(profile.PastMealHistory, entry.RecipeName)
		if err := tx.Update(userRef, []firestore.Update{
			{Path: fieldPastMealHistory, Value: history},
		}); err != nil {
			return goerr.Wrap(err, "failed to update meal history")
		}

		return tx.Set(mealRef, entry)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return goerr.Wrap(err, "failed to save meal",
			goerr.V("user_id", entry.UserID),
			goerr.V("meal_id", entry.ID))
	}

	return nil
}

func (r *Firestore) ListMeals(ctx context.Context, id model.UserID) ([]*model.MealEntry, error) {
	iter := r.userDoc(id).Collection(collectionMeals).
		OrderBy(fieldGeneratedAt, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.MealEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate meals", goerr.V("user_id", id))
		}

		var entry model.MealEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode meal", goerr.V("doc_id", doc.Ref.ID))
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
