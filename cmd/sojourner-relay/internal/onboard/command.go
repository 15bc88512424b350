package onboard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/sojourner-relay/cmd/sojourner-relay/internal"
	"github.com/tinyland-inc/sojourner-relay/pkg/config"
)

func NewOnboardCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create a starter config and collect Slack tokens",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return onboardCmd(force, os.Stdin)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}

func onboardCmd(force bool, in io.Reader) error {
	path := internal.GetConfigPath()

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Printf("Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	cfg := config.DefaultConfig()

	// One scanner for both prompts: a fresh scanner per prompt would
	// swallow input buffered past the first line.
	scanner := bufio.NewScanner(in)

	botToken, err := promptToken("Slack bot token (xoxb-...)", scanner)
	if err != nil {
		return err
	}
	appToken, err := promptToken("Slack app-level token (xapp-...)", scanner)
	if err != nil {
		return err
	}
	cfg.Slack.BotToken = botToken
	cfg.Slack.AppToken = appToken

	if err := config.SaveConfig(path, cfg); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	fmt.Printf("✓ Config written to %s\n", path)
	fmt.Println("Fill in the sojourner section (endpoint, bucket, credentials), then run: sojourner-relay gateway")
	return nil
}

func promptToken(label string, scanner *bufio.Scanner) (string, error) {
	fmt.Printf("Paste your %s:\n", label)
	fmt.Print("> ")

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return "", errors.New("no input received")
	}

	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", errors.New("token cannot be empty")
	}
	return token, nil
}
