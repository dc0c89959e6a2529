// Package app provides application-level wiring for the lab intelligence
// server: it assembles the catalog, pipeline services, and repositories from
// the handles main() provides.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"labintel/internal/catalog"
	"labintel/internal/compose"
	"labintel/internal/config"
	"labintel/internal/db/repository"
	"labintel/internal/domain"
	"labintel/internal/execute"
	"labintel/internal/llm"
	"labintel/internal/service"
	"labintel/internal/translate"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config, and the logger.
type Deps struct {
	Cfg         *config.Config
	LabDB       *sql.DB // the queryable lab database (read-only at request time)
	AskLogWrite *sql.DB // single-connection write pool for the ask log
	AskLogRead  *sql.DB // read pool for the ask log
	Logger      *slog.Logger
	// Generator overrides the LLM client when set (tests, offline mode).
	Generator domain.Generator
}

// App holds the fully-wired application.
type App struct {
	Catalog *catalog.Catalog
	Ask     *service.AskService
	AskLog  domain.AskLogRepository
}

// New wires the catalog, translator, executor, composer, and ask service.
// Catalog introspection failure is returned as CatalogUnavailable and must
// abort startup.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hints, err := catalog.LoadHints(cfg.HintsPath)
	if err != nil {
		return nil, err
	}
	if len(hints) == 0 && cfg.SeedDemo() {
		hints = DemoHints()
	}

	cat, err := catalog.Load(ctx, deps.LabDB, cfg.LabDBDriver, hints)
	if err != nil {
		return nil, err
	}
	logger.Info("schema catalog loaded", "tables", len(cat.Describe()), "hints", len(hints))

	gen := deps.Generator
	if gen == nil {
		gen = llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	}

	var askLog domain.AskLogRepository
	if deps.AskLogWrite != nil {
		askLog = repository.NewAskLogRepo(deps.AskLogWrite)
	}

	translator := translate.New(gen, cat, cfg.MaxRepairAttempts, logger)
	executor := execute.NewExecutor(deps.LabDB, cfg.MaxRows, cfg.QueryTimeout, logger)
	composer := compose.NewComposer(gen, 20, logger)
	ask := service.NewAskService(translator, executor, composer, askLog, logger)

	var history domain.AskLogRepository
	if deps.AskLogRead != nil {
		history = repository.NewAskLogRepo(deps.AskLogRead)
	}

	return &App{Catalog: cat, Ask: ask, AskLog: history}, nil
}
