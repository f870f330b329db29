package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewToolsCommand returns the tools subcommand.
func NewToolsCommand() *cli.Command {
	return &cli.Command{
		Name:   "tools",
		Usage:  "List registered tools and their policy state",
		Action: runTools,
	}
}

func runTools(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	for _, t := range a.tools.List() {
		state := "allowed"
		if !a.tools.IsAllowed(t.Name()) {
			state = "denied"
		}
		fmt.Printf("%-16s %-8s %-8s %s\n", t.Name(), t.Category(), state, t.Description())
	}
	return nil
}
