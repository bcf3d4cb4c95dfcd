package repository

import (
	"context"
	_ "embed"
	"os"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed fixture/profiles.yaml
var defaultFixture []byte

// fixtureFile is the YAML layout accepted by LoadFixture
type fixtureFile struct {
	Profiles []*model.Profile `yaml:"profiles"`
}

// Memory is an in-process store used for development and tests
type Memory struct {
	mu       sync.RWMutex
	profiles map[model.UserID]*model.Profile
	meals    map[model.UserID][]*model.MealEntry
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[model.UserID]*model.Profile),
		meals:    make(map[model.UserID][]*model.MealEntry),
	}
}

// NewMemoryFromFixture creates a store with the bundled sample users
// USER_001 and USER_002
func NewMemoryFromFixture() (*Memory, error) {
	m := NewMemory()
	if err := m.LoadFixture(defaultFixture); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMemoryFromFile creates a store with profiles read from a YAML file
func NewMemoryFromFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read fixture file", goerr.V("path", path))
	}

	m := NewMemory()
	if err := m.LoadFixture(data); err != nil {
		return nil, goerr.Wrap(err, "failed to load fixture file", goerr.V("path", path))
	}
	return m, nil
}

// LoadFixture adds the profiles of a YAML document to the store
func (m *Memory) LoadFixture(data []byte) error {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return goerr.Wrap(err, "failed to parse fixture YAML")
	}

	ctx := context.Background()
	for _, p := range f.Profiles {
		if err := m.PutProfile(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) FetchProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "user not found", goerr.V("user_id", id))
	}
	return cloneProfile(p), nil
}

func (m *Memory) PutProfile(ctx context.Context, profile *model.Profile) error {
	p := cloneProfile(profile)
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return nil
}

func (m *Memory) SaveMeal(ctx context.Context, entry *model.MealEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[entry.UserID]
	if !ok {
		return goerr.Wrap(model.ErrNotFound, "user not found", goerr.V("user_id", entry.UserID))
	}

	saved := *entry
	p.PastMealHistory = append(p.PastMealHistory, entry.RecipeName)
	m.meals[entry.UserID] = append(m.meals[entry.UserID], &saved)
	return nil
}

func (m *Memory) ListMeals(ctx context.Context, id model.UserID) ([]*model.MealEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*model.MealEntry, 0, len(m.meals[id]))
	for _, e := range m.meals[id] {
		saved := *e
		entries = append(entries, &saved)
	}
	return entries, nil
}

func (m *Memory) Close() error {
	return nil
}

// cloneProfile copies the profile so callers cannot mutate stored history
func cloneProfile(p *model.Profile) *model.Profile {
	c := *p
	c.PastMealHistory = slices.Clone(p.PastMealHistory)
	return &c
}
