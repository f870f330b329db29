package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tobind/quill/internal/events"
)

// NewSkillsCommand returns the skills subcommand.
func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List or run registered skills",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List registered skills",
				Action: runSkillsList,
			},
			{
				Name:      "run",
				Usage:     "Execute a skill directly",
				ArgsUsage: "<name> [args-json]",
				Action:    runSkillsRun,
			},
		},
	}
}

func runSkillsList(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	for _, s := range a.skills.All() {
		kind := "content"
		if s.Script != "" {
			kind = "script"
		}
		state := ""
		if ok, reason := s.Available(); !ok {
			state = fmt.Sprintf(" (unavailable: %s)", reason)
		}
		fmt.Printf("%-20s %-8s %s%s\n", s.Name, kind, s.Description, state)
	}
	return nil
}

func runSkillsRun(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: quill skills run <name> [args-json]")
	}
	argsJSON := cmd.Args().Get(1)
	if argsJSON == "" {
		argsJSON = "{}"
	}
	if !json.Valid([]byte(argsJSON)) {
		return fmt.Errorf("args must be valid JSON")
	}

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx = events.ContextWithSessionID(ctx, "cli")
	out, err := a.skills.Execute(ctx, name, argsJSON)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}
