// Dispatch CLI — инструмент командной строки для рассылки анкет.
//
// Использование:
//
//	dispatch [--api-url URL] [--config FILE] [--json] <command> [flags]
//
// Команды:
//
//	run       Выполнить один run локально
//	runs      История runs (через API)
//	trigger   Внеплановый run на сервере
//	schedule  Расписание: next (локально), status (через API)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Dispatch/internal/cli"
	"github.com/shaiso/Dispatch/internal/config"
	"github.com/shaiso/Dispatch/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "dispatch",
		Short:         "Dispatch CLI — scheduled questionnaire dispatch",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout занят данными команд, логи — в stderr
			logger := telemetry.NewLogger(os.Stderr, telemetry.LogLevel(), os.Getenv("LOG_FORMAT"))
			slog.SetDefault(logger.With("service", "dispatch-cli"))
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8083", "Scheduler API URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "dispatch.toml", "Config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	configFn := func() (*config.Config, error) { return config.Read(configPath) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(configFn, outputFn),
		cli.NewRunsCmd(clientFn, outputFn),
		cli.NewTriggerCmd(clientFn, outputFn),
		cli.NewScheduleCmd(configFn, clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
