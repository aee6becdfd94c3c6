package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/adapter"
	"github.com/engramhq/engram/pkg/interfaces"
	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/repository"
	"github.com/engramhq/engram/pkg/usecase/mail"
	"github.com/engramhq/engram/pkg/usecase/memory"
	"github.com/engramhq/engram/pkg/usecase/search"
	"github.com/engramhq/engram/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	owner string

	// Content store
	store      string
	dbPath     string
	fsProject  string
	fsDatabase string

	// Vector index
	index     string
	indexPath string

	// Embedder
	embedder       string
	geminiProject  string
	geminiLocation string
	embeddingModel string

	timeout  time.Duration
	logLevel string
	jsonOut  bool
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Aliases:     []string{"o"},
			Usage:       "Owner ID scoping every operation",
			Sources:     cli.EnvVars("ENGRAM_OWNER"),
			Destination: &cfg.owner,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Content store backend (sqlite, firestore, memory)",
			Value:       "sqlite",
			Sources:     cli.EnvVars("ENGRAM_STORE"),
			Destination: &cfg.store,
		},
		&cli.StringFlag{
			Name:        "db-path",
			Usage:       "SQLite database file path",
			Value:       "engram.db",
			Sources:     cli.EnvVars("ENGRAM_DB_PATH"),
			Destination: &cfg.dbPath,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "Google Cloud project ID for Firestore",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.fsProject,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.fsDatabase,
		},
		&cli.StringFlag{
			Name:        "index",
			Usage:       "Vector index backend (chromem, memory)",
			Value:       "chromem",
			Sources:     cli.EnvVars("ENGRAM_INDEX"),
			Destination: &cfg.index,
		},
		&cli.StringFlag{
			Name:        "index-path",
			Usage:       "Directory for the persistent vector index",
			Value:       "engram.index",
			Sources:     cli.EnvVars("ENGRAM_INDEX_PATH"),
			Destination: &cfg.indexPath,
		},
		&cli.StringFlag{
			Name:        "embedder",
			Usage:       "Embedding backend (gemini, mock)",
			Value:       "gemini",
			Sources:     cli.EnvVars("ENGRAM_EMBEDDER"),
			Destination: &cfg.embedder,
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
			Name:        "embedding-model",
			Usage:       "Gemini embedding model name",
			Value:       "gemini-embedding-001",
			Sources:     cli.EnvVars("ENGRAM_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.DurationFlag{
			Name:        "call-timeout",
			Usage:       "Timeout applied to every external store/index/embedding call",
			Value:       15 * time.Second,
			Sources:     cli.EnvVars("ENGRAM_CALL_TIMEOUT"),
			Destination: &cfg.timeout,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ENGRAM_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Emit results as a {success, data|error} JSON envelope",
			Sources:     cli.EnvVars("ENGRAM_JSON"),
			Destination: &cfg.jsonOut,
		},
	}
}

// newContentStore creates the configured ContentStore
func (cfg *config) newContentStore(ctx context.Context) (interfaces.ContentStore, error) {
	switch cfg.store {
	case "sqlite":
		return repository.NewSQLite(cfg.dbPath)
	case "firestore":
		if cfg.fsProject == "" {
			return nil, goerr.New("firestore-project is required", goerr.T(model.TagValidation))
		}
		return repository.NewFirestore(ctx, cfg.fsProject, cfg.fsDatabase)
	case "memory":
		return repository.NewMemory(), nil
	default:
		return nil, goerr.New("unknown store backend", goerr.V("store", cfg.store), goerr.T(model.TagValidation))
	}
}

// newVectorIndex creates the configured VectorIndex
func (cfg *config) newVectorIndex() (interfaces.VectorIndex, error) {
	switch cfg.index {
	case "chromem":
		if cfg.indexPath != "" {
			return adapter.NewPersistentChromem(cfg.indexPath)
		}
		return adapter.NewChromem(), nil
	case "memory":
		return adapter.NewMemoryIndex(), nil
	default:
		return nil, goerr.New("unknown index backend", goerr.V("index", cfg.index), goerr.T(model.TagValidation))
	}
}

// newEmbedder creates the configured Embedder
func (cfg *config) newEmbedder(ctx context.Context) (interfaces.Embedder, error) {
	switch cfg.embedder {
	case "gemini":
		if cfg.geminiProject == "" {
			return nil, goerr.New("gemini-project is required", goerr.T(model.TagValidation))
		}
		return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
			adapter.WithEmbeddingModel(cfg.embeddingModel))
	case "mock":
		return adapter.NewMockEmbedder(), nil
	default:
		return nil, goerr.New("unknown embedder backend", goerr.V("embedder", cfg.embedder), goerr.T(model.TagValidation))
	}
}

// usecases bundles the wired usecase layer for a command invocation
type usecases struct {
	memories *memory.UseCase
	engine   *search.Engine
	mails    *mail.UseCase
}

// setup wires the configured backends and runs the idempotent schema
// initialization once, before any operation touches the stores.
func (cfg *config) setup(ctx context.Context) (*usecases, error) {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))

	store, err := cfg.newContentStore(ctx)
	if err != nil {
		return nil, err
	}
	index, err := cfg.newVectorIndex()
	if err != nil {
		return nil, err
	}
	embedder, err := cfg.newEmbedder(ctx)
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()
	if err := store.EnsureSchema(initCtx); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.T(model.TagStore))
	}

	memories := memory.New(store, index, embedder, memory.WithCallTimeout(cfg.timeout))
	engine := search.New(store, index, embedder, search.WithCallTimeout(cfg.timeout))
	mails := mail.New(store, memories, engine, mail.WithCallTimeout(cfg.timeout))

	return &usecases{memories: memories, engine: engine, mails: mails}, nil
}
