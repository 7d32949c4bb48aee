// Package action executes local desktop actions: web searches, music
// lookups, and application launches. Actions are best-effort; failures are
// reported in the Result and never abort a conversation turn.
package action

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/domain"
	"github.com/valetapp/valet/internal/logging"
)

// Supported action types.
const (
	TypeWebSearch = "web_search"
	TypePlayMusic = "play_music"
	TypeLaunchApp = "launch_app"
)

// UnsupportedActionError means the router produced an action type the
// dispatcher does not know.
type UnsupportedActionError struct {
	Type string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("unsupported action type %q", e.Type)
}

// Result reports the outcome of one action. Err is nil on success.
type Result struct {
	Success bool
	Err     error
}

// defaultAppAliases maps friendly names to launch commands. Config-provided
// aliases are merged on top and win on conflict.
var defaultAppAliases = map[string]string{
	"notepad":    "notepad",
	"calc":       "calc",
	"calculator": "calc",
	"chrome":     "chrome",
	"browser":    "chrome",
	"edge":       "msedge",
	"code":       "code",
	"files":      "explorer",
	"terminal":   "cmd",
}

// URLOpener opens a URL in the system default handler.
type URLOpener func(ctx context.Context, rawURL string) error

// CommandRunner starts a local program.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Dispatcher routes action requests to local side effects.
type Dispatcher struct {
	searchURL string
	musicURL  string
	apps      map[string]string
	openURL   URLOpener
	run       CommandRunner
	log       *logging.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithURLOpener replaces the platform URL opener (used in tests).
func WithURLOpener(open URLOpener) Option {
	return func(d *Dispatcher) { d.openURL = open }
}

// WithCommandRunner replaces the program launcher (used in tests).
func WithCommandRunner(run CommandRunner) Option {
	return func(d *Dispatcher) { d.run = run }
}

// NewDispatcher builds a dispatcher from the actions config section.
func NewDispatcher(cfg config.ActionsConfig, log *logging.Logger, opts ...Option) *Dispatcher {
	apps := make(map[string]string, len(defaultAppAliases)+len(cfg.Apps))
	for alias, cmd := range defaultAppAliases {
		apps[alias] = cmd
	}
	for alias, cmd := range cfg.Apps {
		apps[strings.ToLower(alias)] = cmd
	}

	d := &Dispatcher{
		searchURL: cfg.SearchURL,
		musicURL:  cfg.MusicURL,
		apps:      apps,
		openURL:   platformOpenURL,
		run:       runCommand,
		log:       log.Sub("action"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute performs one action and reports the outcome. OS-level failures are
// captured in the Result; they are never returned as hard errors.
func (d *Dispatcher) Execute(ctx context.Context, req domain.ActionRequest) Result {
	var err error
	switch req.Type {
	case TypeWebSearch:
		err = d.webSearch(ctx, req.Params["query"])
	case TypePlayMusic:
		err = d.playMusic(ctx, req.Params["query"], req.Params["song"])
	case TypeLaunchApp:
		name := req.Params["appName"]
		if name == "" {
			name = req.Params["app"]
		}
		err = d.launchApp(ctx, name)
	default:
		err = &UnsupportedActionError{Type: req.Type}
	}

	if err != nil {
		d.log.Warn().Str("type", req.Type).Err(err).Msg("action failed")
		return Result{Success: false, Err: err}
	}
	d.log.Info().Str("type", req.Type).Msg("action executed")
	return Result{Success: true}
}

func (d *Dispatcher) webSearch(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("web_search requires a query")
	}
	return d.openURL(ctx, fmt.Sprintf(d.searchURL, url.QueryEscape(query)))
}

func (d *Dispatcher) playMusic(ctx context.Context, query, song string) error {
	if query == "" {
		query = song
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("play_music requires a query")
	}
	return d.openURL(ctx, fmt.Sprintf(d.musicURL, url.QueryEscape(query)))
}

func (d *Dispatcher) launchApp(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("launch_app requires an app name")
	}
	cmd, ok := d.apps[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		// Not an alias we know; try it as a raw command.
		cmd = name
	}
	if err := d.run(ctx, cmd); err != nil {
		return fmt.Errorf("launching %q: %w", name, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Start()
}
