package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tobind/quill/internal/agent"
	"github.com/tobind/quill/internal/config"
	"github.com/tobind/quill/internal/events"
	"github.com/tobind/quill/internal/providers"
	"github.com/tobind/quill/internal/sandbox"
	"github.com/tobind/quill/internal/skills"
	"github.com/tobind/quill/internal/storage"
	"github.com/tobind/quill/internal/tools"
)

// app bundles the wired runtime components for a command invocation.
type app struct {
	cfg       *config.Config
	bus       *events.Bus
	providers *providers.Registry
	tools     *tools.Registry
	skills    *skills.Registry
	usage     *storage.UsageStore // nil when the database cannot be opened
	tracker   *storage.UsageTracker
	runtime   *agent.Runtime
}

// buildApp loads configuration and wires every component the commands need.
func buildApp(cmd *cli.Command) (*app, error) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}

	bus := events.NewBus(1024)

	providerReg, err := providers.NewRegistryFromConfig(cfg.Providers)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("setup providers: %w", err)
	}

	toolReg := tools.NewRegistry()
	tools.RegisterNative(toolReg, cfg.Workspace)

	runner := sandbox.NewRunner(cfg.Workspace)
	if cfg.Skills.Timeout > 0 {
		runner.Timeout = cfg.Skills.Timeout.Duration()
	}
	skillReg := skills.NewRegistry(runner)
	if err := skillReg.LoadDirs(cfg.Skills.Dirs...); err != nil {
		bus.Close()
		return nil, fmt.Errorf("load skills: %w", err)
	}
	toolReg.Register(skills.NewSkillTool(skillReg, bus))

	// Groups before the policy: the policy may reference them.
	if cfg.Tools.GroupsFile != "" {
		if err := toolReg.LoadGroups(cfg.Tools.GroupsFile); err != nil {
			bus.Close()
			return nil, fmt.Errorf("load tool groups: %w", err)
		}
	}
	if err := toolReg.ApplyPolicyConfig(cfg.Tools.Policy); err != nil {
		bus.Close()
		return nil, fmt.Errorf("apply tool policy: %w", err)
	}

	a := &app{
		cfg:       cfg,
		bus:       bus,
		providers: providerReg,
		tools:     toolReg,
		skills:    skillReg,
	}

	if usage, err := storage.NewUsageStore(cfg.Storage.UsageDB); err != nil {
		slog.Warn("usage tracking disabled", "error", err)
	} else {
		a.usage = usage
		a.tracker = storage.NewUsageTracker(bus, usage)
	}

	a.runtime = &agent.Runtime{
		Providers:     providerReg,
		Tools:         toolReg,
		Bus:           bus,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
	}
	return a, nil
}

// close tears down the app in reverse wiring order.
func (a *app) close() {
	if a.tracker != nil {
		a.tracker.Close()
	}
	a.bus.Close()
	if a.usage != nil {
		a.usage.Close()
	}
}
