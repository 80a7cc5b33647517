package cmd

import (
	"fmt"

	"github.com/badno/metaops/internal/config"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool

	cfg *config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "metaops",
	Short: "Livid metafield operations",
	Long: color.New(color.FgCyan, color.Bold).Sprint(`
                 _
  _ __ ___   ___| |_ __ _  ___  _ __  ___
 | '_ ' _ \ / _ \ __/ _' |/ _ \| '_ \/ __|
 | | | | | |  __/ || (_| | (_) | |_) \__ \
 |_| |_| |_|\___|\__\__,_|\___/| .__/|___/
                               |_|
`) + `
Metafield operations for the Livid Shopify store

Browse products, group variants, link fitguides, stage bulk metafield
edits and save them upstream in batches.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.metaops/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(fitguidesCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(mediaCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
}

// setup loads .env and the config file and configures logging
func setup(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	if logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err := config.LoadEnv(); err != nil {
		log.Warnf("%v", err)
	}

	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}
