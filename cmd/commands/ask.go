package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a message to the agent and print the response",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "session",
				Aliases: []string{"s"},
				Usage:   "Session ID (empty = new session)",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := strings.Join(cmd.Args().Slice(), " ")
	if message == "" {
		return fmt.Errorf("usage: quill ask <message>")
	}

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	sessionID := cmd.String("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
		fmt.Fprintf(os.Stderr, "session: %s\n", sessionID)
	}

	answer, err := a.runtime.Run(ctx, sessionID, message)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
