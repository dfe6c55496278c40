package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/botdesk/botusage/internal/commands"
)

func main() {
	ctx := context.Background()

	rootCmd := &cobra.Command{
		Use:   "botusage",
		Short: "Bot platform usage analysis tool",
		Long:  `A CLI for analyzing bot-assistant usage: token consumption, cost estimation, per-bot and per-company reports, a live dashboard, and the platform reverse proxy.`,
	}

	rootCmd.AddCommand(
		commands.NewBotsCommand(),
		commands.NewCompaniesCommand(),
		commands.NewDailyCommand(),
		commands.NewGlobalCommand(),
		commands.NewHistoryCommand(),
		commands.NewUserCommand(),
		commands.NewMonitorCommand(),
		commands.NewProxyCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
