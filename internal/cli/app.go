// Package cli implements the formdraft command line: one-shot commands that
// edit the saved draft and an interactive edit session.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/internal/config"
	"github.com/goliatone/go-formdraft/internal/prompt"
	"github.com/goliatone/go-formdraft/pkg/activity"
	"github.com/goliatone/go-formdraft/pkg/payload"
	"github.com/goliatone/go-formdraft/pkg/rules"
	"github.com/goliatone/go-formdraft/pkg/store"
	"github.com/goliatone/go-formdraft/pkg/submit"
)

// App carries the dependencies shared by all commands. Zero values are
// replaced with terminal defaults.
type App struct {
	Out    io.Writer
	Err    io.Writer
	Driver prompt.Driver
	// Hooks receive every draft event, in addition to the debug logger.
	Hooks []activity.ActivityHook

	Config config.Config

	configFile string
	envFile    string
	verbose    bool
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

func (a *App) errOut() io.Writer {
	if a.Err == nil {
		return os.Stderr
	}
	return a.Err
}

func (a *App) driver() prompt.Driver {
	if a.Driver == nil {
		return prompt.NewSurveyDriver()
	}
	return a.Driver
}

func (a *App) loadConfig() error {
	cfg, err := config.Load(config.Sources{EnvFile: a.envFile, ConfigFile: a.configFile})
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Debug = true
	}
	a.Config = cfg
	return nil
}

// openManager builds a Manager from the loaded config and adopts the saved
// draft, if any.
func (a *App) openManager(ctx context.Context) (*formdraft.Manager, error) {
	cfg := a.Config
	codec, err := store.CodecFor(cfg.StoreFormat)
	if err != nil {
		return nil, err
	}
	fileStore, err := store.NewFileStore(cfg.StorePath, codec.Extension())
	if err != nil {
		return nil, err
	}
	evaluator, err := rules.New(cfg.RuleEngine,
		rules.WithProgramCache(rules.NewMemoryCache()),
		rules.WithFunctionRegistry(rules.DefaultFunctions()),
	)
	if err != nil {
		return nil, err
	}
	client := submit.New(cfg.Endpoint, submit.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))

	opts := []formdraft.ManagerOption{
		formdraft.WithStore(fileStore),
		formdraft.WithStoreKey(cfg.StoreKey),
		formdraft.WithCodec(codec),
		formdraft.WithSubmitter(client),
		formdraft.WithEvaluator(evaluator),
		formdraft.WithActivityConfig(activity.Config{Enabled: true, Channel: cfg.ActivityChannel}),
		formdraft.WithActivityHooks(a.Hooks...),
	}
	if cfg.SanitizeHTML {
		opts = append(opts, formdraft.WithSanitizer(payload.StrictSanitizer()))
	}
	if cfg.Debug {
		logger := log.New(a.errOut(), "formdraft ", log.LstdFlags|log.Lmicroseconds)
		opts = append(opts,
			formdraft.WithLogger(formdraft.LoggerFunc(func(event formdraft.OperationEvent) {
				if event.Err != nil {
					logger.Printf("op=%s duration=%s err=%v fields=%v", event.Op, event.Duration, event.Err, event.Fields)
					return
				}
				logger.Printf("op=%s duration=%s fields=%v", event.Op, event.Duration, event.Fields)
			})),
			formdraft.WithActivityHooks(activity.HookFunc(func(_ context.Context, event activity.Event) error {
				logger.Printf("event=%s object=%s/%s", event.Verb, event.ObjectType, event.ObjectID)
				return nil
			})),
		)
	}

	manager := formdraft.New(formdraft.Form{}, opts...)
	if err := manager.Initialize(ctx, formdraft.Form{}); err != nil {
		return nil, fmt.Errorf("open draft: %w", err)
	}
	return manager, nil
}
