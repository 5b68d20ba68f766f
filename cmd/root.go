package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/projecteru2/ovxview/config"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ovxview",
		Short:        "ovxview - dashboard for virtualized SDN controllers",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().String("backend", "", "controller REST proxy URL")
	cmd.PersistentFlags().String("root-dir", "", "root data directory")
	cmd.PersistentFlags().String("geo-file", "", "core switch placement and network names")
	cmd.PersistentFlags().String("log-level", "", "log level")

	_ = viper.BindPFlag("backend", cmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("root_dir", cmd.PersistentFlags().Lookup("root-dir"))
	_ = viper.BindPFlag("geo_file", cmd.PersistentFlags().Lookup("geo-file"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("OVXVIEW")
	viper.AutomaticEnv()

	cmd.AddCommand(
		serveCmd,
		snapshotCmd,
		decomposeCmd,
		linkCmd,
		pingCmd,
		networksCmd,
		flowtablesCmd,
		waitCmd,
		versionCmd,
	)

	return cmd
}()

func initConfig() error {
	conf = config.DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	_ = viper.ReadInConfig() // optional; missing file is OK

	if err := viper.Unmarshal(conf); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if conf.PoolSize <= 0 {
		conf.PoolSize = runtime.NumCPU()
	}
	if conf.RetryInterval <= 0 {
		conf.RetryInterval = config.DefaultConfig().RetryInterval
	}
	if conf.UpdateInterval <= 0 {
		conf.UpdateInterval = config.DefaultConfig().UpdateInterval
	}

	return log.SetupLog(context.Background(), &conf.Log, "")
}

// Execute is the main entry point called from main.go.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}
