package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/version"
	"github.com/valetapp/valet/internal/workflow"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show Valet status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Valet %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Printf("Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Printf("Gateway: port=%d bind=%s auth=%v\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Token != "")
			fmt.Printf("LLM:     model=%s key=%v\n", cfg.LLM.Model, cfg.LLM.APIKey != "")
			fmt.Printf("Scheduler: store=%s\n", cfg.Scheduler.Store)

			registry := workflow.NewRegistry(cfg.Workflows, log)
			for _, d := range registry.Descriptors() {
				state := "not configured"
				if registry.IsConfigured(d.ID) {
					state = "configured"
				}
				fmt.Printf("Workflow: %s (%s)\n", d.ID, state)
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
