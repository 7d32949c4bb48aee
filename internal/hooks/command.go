package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/valetapp/valet/internal/config"
)

const defaultCommandTimeout = 10 * time.Second

// RegisterCommandHooks wires the config-defined shell commands into the
// manager. Each command receives the event payload as JSON on stdin.
func RegisterCommandHooks(m *Manager, cfg config.HooksConfig) {
	register := func(event string, entries []config.HookEntry) {
		for i, entry := range entries {
			name := fmt.Sprintf("command[%d]", i)
			m.On(event, name, commandHandler(entry))
		}
	}
	register(EventServerStart, cfg.ServerStart)
	register(EventServerStop, cfg.ServerStop)
	register(EventTurnCompleted, cfg.TurnCompleted)
	register(EventActionExecuted, cfg.ActionExecuted)
}

func commandHandler(entry config.HookEntry) Handler {
	timeout := defaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding hook payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", entry.Command)
		cmd.Stdin = bytes.NewReader(body)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("hook command %q: %w (output: %s)", entry.Command, err, bytes.TrimSpace(out))
		}
		return nil
	}
}
