package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}
	v := viper.New()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "fb",
		Short:         "Focus budget CLI (fb): score work items and allocate attention",
		Long:          "fb scores batches of work items, keeps a bounded set of decaying foci, splits a fixed resource budget across them and records every cycle.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			wired, err := wireApp(v, configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/fb/config.toml)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("history-backend", "", "History backend: toml or sqlite")
	flags.String("boost-source", "", "Tier boost source: midpoint or runtime")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("history.backend", flags.Lookup("history-backend"))
	_ = v.BindPFlag("boost.source", flags.Lookup("boost-source"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newWatchCmd(app),
		newHistoryCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
