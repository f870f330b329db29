// Package commands holds the quill CLI commands.
package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/tobind/quill/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "quill",
		Usage: "LLM agent runtime with sandboxed tools and skills",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewAskCommand(),
			NewGatewayCommand(),
			NewStatusCommand(),
			NewToolsCommand(),
			NewSkillsCommand(),
		},
	}
}
