package main

import (
	"github.com/spf13/cobra"

	"ndarimport/internal/services"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:   "ndarimport <url> <user> <folderpath>",
		Short: "Upload an NDAR export into a scitran instance",
		Long: `Upload an NDAR export folder (ndar_aggregate.txt and image03.txt) into a
scitran instance as one project with a session per subject and an acquisition
per image. The created project id is printed on stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(3)(cmd, args); err != nil {
				return services.Wrap(services.ErrConfiguration, "cli", "arguments", "", err)
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, ctx, args[0], args[1], args[2])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Override logging.format (auto, console, json)")

	rootCmd.AddCommand(newPlanCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
