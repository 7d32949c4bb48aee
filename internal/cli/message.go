package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send messages through the conversation core",
	}

	cmd.AddCommand(newMessageSendCmd())
	return cmd
}

func newMessageSendCmd() *cobra.Command {
	var (
		session string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Run one conversation turn and print the assistant's reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}

			msg := rt.orch.HandleTurn(context.Background(), session, args[0])

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(msg)
			}

			fmt.Println(msg.Content)
			if msg.WorkflowResult != nil {
				fmt.Printf("workflow result: %s\n", msg.WorkflowResult)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "cli", "session key")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full message as JSON")

	return cmd
}
