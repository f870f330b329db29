package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show configured providers, tools, and skills",
		Action: runStatus,
	}
}

func runStatus(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Println("providers:")
	for _, p := range a.providers.All() {
		state := "unavailable"
		if p.Available() {
			state = "available"
		}
		fmt.Printf("  %-20s %s\n", p.Name(), state)
	}

	fmt.Printf("tools: %d registered, %d allowed\n", len(a.tools.List()), len(a.tools.Allowed()))
	fmt.Printf("skills: %d registered\n", len(a.skills.All()))
	fmt.Printf("workspace: %s\n", a.cfg.Workspace)

	if a.usage != nil {
		totals, err := a.usage.Totals()
		if err != nil {
			return err
		}
		var in, out int
		for _, u := range totals {
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Printf("usage: %d sessions, %d input tokens, %d output tokens\n", len(totals), in, out)
	}
	return nil
}
