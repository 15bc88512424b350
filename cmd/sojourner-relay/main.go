package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/sojourner-relay/cmd/sojourner-relay/internal"
	"github.com/tinyland-inc/sojourner-relay/cmd/sojourner-relay/internal/gateway"
	"github.com/tinyland-inc/sojourner-relay/cmd/sojourner-relay/internal/onboard"
	"github.com/tinyland-inc/sojourner-relay/cmd/sojourner-relay/internal/version"
)

func NewRelayCommand() *cobra.Command {
	short := fmt.Sprintf("%s sojourner-relay - Slack to Sojourner upload gateway v%s\n\n",
		internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "sojourner-relay",
		Short:   short,
		Example: "sojourner-relay gateway",
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		gateway.NewGatewayCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewRelayCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
