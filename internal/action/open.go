package action

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// platformOpenURL opens a URL with the OS default handler.
func platformOpenURL(ctx context.Context, rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", rawURL)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", rawURL)
	case "linux":
		cmd = exec.CommandContext(ctx, "xdg-open", rawURL)
	default:
		return fmt.Errorf("no URL handler for platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
