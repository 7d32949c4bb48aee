package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valetapp/valet/internal/gateway"
	"github.com/valetapp/valet/internal/llm"
	"github.com/valetapp/valet/internal/schedule"
	"github.com/valetapp/valet/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Valet gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("preparing data directories: %w", err)
			}

			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}

			opts := []gateway.Option{
				gateway.WithHooks(rt.hooks),
				gateway.WithTranscriber(llm.NewWhisperClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.TranscribeModel)),
			}

			// Scheduler store: sqlite on disk, or in-memory for throwaway runs.
			dbPath := ":memory:"
			if cfg.Scheduler.Store == "sqlite" {
				dbPath = filepath.Join(paths.Data, "valet.db")
			}
			db, err := store.Open(dbPath, log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			events := schedule.NewEventStore(db)
			advisor := schedule.NewAdvisor(
				llm.NewGroqClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model),
				cfg.LLM.Model, log)
			opts = append(opts, gateway.WithEvents(events), gateway.WithAdvisor(advisor))

			for _, d := range rt.registry.Descriptors() {
				if rt.registry.IsConfigured(d.ID) {
					log.Info().Str("workflow", d.ID).Msg("workflow endpoint configured")
				} else {
					log.Warn().Str("workflow", d.ID).Msg("workflow has no endpoint configured")
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := gateway.New(cfg.Gateway, rt.orch, log, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
