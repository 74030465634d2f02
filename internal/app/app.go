// Package app wires the application: outbound clients, run-history
// repository, pipeline service, and the optional scheduler.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"pbi-rag/internal/config"
	"pbi-rag/internal/db/repository"
	"pbi-rag/internal/powerbi"
	"pbi-rag/internal/search"
	"pbi-rag/internal/service/pipeline"
	"pbi-rag/internal/storage"
)

// Deps holds the external dependencies that main() must provide: config,
// the run-history database handles, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	PowerBI    *powerbi.Client
	Store      storage.BlobStore
	Search     *search.Client
	Pipeline   *pipeline.Service
	RunHistory *repository.RunHistoryRepo
	Scheduler  *pipeline.Scheduler // nil unless SCHEDULE_FILE is set
}

// New wires clients, repositories, and services from the provided deps.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Outbound clients ===
	pbiClient := powerbi.NewClient(powerbi.Config{
		ClientID:     cfg.PowerBIClientID,
		ClientSecret: cfg.PowerBIClientSecret,
		TenantID:     cfg.PowerBITenantID,
		WorkspaceID:  cfg.PowerBIWorkspaceID,
		Timeout:      cfg.HTTPClientTimeout,
	}, deps.Logger)

	store, err := storage.NewBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}

	searchClient := search.NewClient(search.Config{
		ServiceName: cfg.SearchServiceName,
		AdminKey:    cfg.SearchAdminKey,
		IndexName:   cfg.SearchIndexName,
		Timeout:     cfg.HTTPClientTimeout,
	}, deps.Logger)

	// === Run history ===
	runHistoryRepo := repository.NewRunHistoryRepo(deps.WriteDB, deps.ReadDB)

	// === Pipeline ===
	pipelineSvc := pipeline.New(pbiClient, store, searchClient, runHistoryRepo, cfg, deps.Logger)

	// === Scheduler (optional) ===
	var scheduler *pipeline.Scheduler
	if cfg.ScheduleFile != "" {
		scheduler = pipeline.NewScheduler(pipelineSvc, cfg.ScheduleFile, deps.Logger)
	}

	return &App{
		PowerBI:    pbiClient,
		Store:      store,
		Search:     searchClient,
		Pipeline:   pipelineSvc,
		RunHistory: runHistoryRepo,
		Scheduler:  scheduler,
	}, nil
}
