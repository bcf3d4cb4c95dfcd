package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/adapter"
	"github.com/m-mizutani/mealgen/pkg/repository"
	"github.com/urfave/cli/v3"
)

const (
	storeFirestore = "firestore"
	storeSQLite    = "sqlite"
	storeMemory    = "memory"
)

// config holds configuration values
type config struct {
	// Repository
	store      string
	project    string
	database   string
	sqlitePath string
	fixture    string

	// Adapters
	geminiAPIKey   string
	geminiProject  string
	geminiLocation string
	geminiModel    string
	temperature    float64
	maxTokens      int64
}

// storeFlags returns flags selecting and configuring the profile store
func storeFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Profile store (firestore, sqlite, memory)",
			Value:       storeMemory,
			Sources:     cli.EnvVars("MEALGEN_STORE"),
			Destination: &cfg.store,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Path to the SQLite database file",
			Value:       "mealgen.db",
			Sources:     cli.EnvVars("MEALGEN_SQLITE_PATH"),
			Destination: &cfg.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "fixture",
			Usage:       "YAML profile fixture for the memory store (built-in users when empty)",
			Sources:     cli.EnvVars("MEALGEN_FIXTURE"),
			Destination: &cfg.fixture,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (Vertex AI is used when empty)",
			Sources:     cli.EnvVars("GEMINI_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       adapter.DefaultGenerativeModel,
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.FloatFlag{
			Name:        "temperature",
			Usage:       "Sampling temperature",
			Value:       adapter.DefaultTemperature,
			Sources:     cli.EnvVars("MEALGEN_TEMPERATURE"),
			Destination: &cfg.temperature,
		},
		&cli.IntFlag{
			Name:        "max-tokens",
			Usage:       "Maximum output tokens",
			Value:       adapter.DefaultMaxOutputTokens,
			Sources:     cli.EnvVars("MEALGEN_MAX_TOKENS"),
			Destination: &cfg.maxTokens,
		},
	}
}

// newRepository creates the profile store selected by --store
func (cfg *config) newRepository() (repository.Repository, error) {
	switch cfg.store {
	case storeMemory, "":
		if cfg.fixture == "" {
			return repository.NewMemoryFromFixture()
		}
		return repository.NewMemoryFromFile(cfg.fixture)

	case storeSQLite:
		if cfg.sqlitePath == "" {
			return nil, goerr.New("sqlite-path is required")
		}
		return repository.NewSQLite(cfg.sqlitePath)

	case storeFirestore:
		if cfg.project == "" {
			return nil, goerr.New("project is required")
		}
		if cfg.database == "" {
			return nil, goerr.New("database is required")
		}

		repo, err := repository.New(cfg.project, cfg.database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create repository")
		}
		return repo, nil

	default:
		return nil, goerr.New("unknown store", goerr.V("store", cfg.store))
	}
}

// newGemini creates a new Gemini adapter instance. The API key takes
// precedence over Vertex AI.
func (cfg *config) newGemini(ctx context.Context) (*adapter.GeminiClient, error) {
	opts := []adapter.GeminiOption{
		adapter.WithGenerativeModel(cfg.geminiModel),
		adapter.WithTemperature(float32(cfg.temperature)),
		adapter.WithMaxOutputTokens(int32(cfg.maxTokens)),
	}

	if cfg.geminiAPIKey != "" {
		return adapter.NewGemini(ctx, cfg.geminiAPIKey, opts...)
	}

	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-api-key or gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewVertexGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newStorage creates the artifact sink: a Cloud Storage bucket when set,
// otherwise a local directory
func newStorage(ctx context.Context, bucketName, dir string) (adapter.Storage, error) {
	if bucketName != "" {
		storage, err := adapter.NewStorage(ctx, bucketName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage")
		}
		return storage, nil
	}

	if dir != "" {
		return adapter.NewFileStorage(dir), nil
	}

	return nil, nil
}
