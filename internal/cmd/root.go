// Package cmd holds the blog command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fluxynet/blog/internal/config"
	"github.com/fluxynet/blog/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Blog platform: GitHub login service and article admin",
	Long: `blog runs the two services of the blog platform.

The auth service signs users in with GitHub, admits members of one
organization and keeps their sessions in Redis. The admin service manages
articles in Postgres for anyone holding a live session.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file (YAML); BLOG_* env vars override it")
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}
