package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/schedule-board/internal/config"
	"github.com/jonathan/schedule-board/internal/db"
	"github.com/jonathan/schedule-board/internal/fetch"
	"github.com/jonathan/schedule-board/internal/logging"
	"github.com/jonathan/schedule-board/internal/schedule"
	"github.com/jonathan/schedule-board/internal/server"
	"github.com/jonathan/schedule-board/internal/sheets"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that fetches the schedule source, runs the normalization pipeline and exposes the canonical schedule over REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config file (JSON or YAML)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	_ = serveCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := logging.New(cfg.Logging.Level)

	aliases, err := config.LoadAliasOverrides(cfg.Aliases)
	if err != nil {
		return err
	}
	processor, err := schedule.NewProcessor(schedule.WithAliases(aliases))
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	ctx := cmd.Context()
	deps := server.Deps{
		Processor: processor,
		Logger:    log,
	}

	switch cfg.Source.Type {
	case config.SourceServiceAccount:
		client, err := sheets.NewClient(ctx, cfg.Source.SpreadsheetID, cfg.Source.CredentialsFile)
		if err != nil {
			return err
		}
		deps.Fetch = &sheetSource{client: client, worksheet: cfg.Source.Worksheet}
		deps.Write = &sheetSource{client: client, worksheet: cfg.Source.Worksheet}
	case config.SourcePublicCSV:
		deps.Fetch = &csvSource{url: cfg.Source.CSVURL}
	}

	if cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Store = database
		log.Info().Msg("run history enabled")
	}

	srv := server.New(server.Config{
		Port:      cfg.Server.Port,
		APIKey:    cfg.Server.APIKey,
		SourceKey: cfg.Source.Key(),
		CacheTTL:  cfg.Cache.TTL(),
	}, deps)

	return srv.Start()
}

// sheetSource adapts the Sheets client to the server's fetch and write
// interfaces for one fixed worksheet.
type sheetSource struct {
	client    *sheets.Client
	worksheet string
}

func (s *sheetSource) FetchTable(ctx context.Context) (*schedule.Table, error) {
	return s.client.FetchTable(ctx, s.worksheet)
}

func (s *sheetSource) WriteSchedule(ctx context.Context, sched schedule.Schedule) error {
	return s.client.WriteSchedule(ctx, s.worksheet, sched)
}

// csvSource fetches a published CSV endpoint.
type csvSource struct {
	url string
}

func (s *csvSource) FetchTable(ctx context.Context) (*schedule.Table, error) {
	return fetch.CSV(ctx, s.url, nil)
}
