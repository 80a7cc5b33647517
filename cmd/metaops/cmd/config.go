package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/badno/metaops/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Initialize, view, and modify configuration settings.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default settings.`,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display all configuration settings.`,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long:  `Set a specific configuration value. Run 'metaops config keys' for the list.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long:  `Get a specific configuration value.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configKeysCmd)
}

func configExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	printHeader("Initializing configuration")

	path, err := configPath()
	if err != nil {
		return err
	}

	if configExists(path) {
		color.Yellow("  Configuration file already exists: %s", path)
		fmt.Println()
		return nil
	}

	if err := config.SaveTo(config.DefaultConfig(), path); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	color.Green("  ✓ Created configuration file: %s", path)
	fmt.Println()

	color.Yellow("  Next steps:")
	fmt.Println("    1. Set your Shopify Admin API token (or put it in .env):")
	fmt.Printf("       export %s=your_token_here\n", config.DefaultConfig().Shopify.AccessTokenEnv)
	fmt.Println()
	fmt.Println("    2. Set your store:")
	fmt.Println("       metaops config set shopify.store your-store.myshopify.com")
	fmt.Println()
	fmt.Println("    3. Optionally enable the save journal:")
	fmt.Println("       export POSTGRES_USER=... POSTGRES_PASSWORD=...")
	fmt.Println("       metaops db init && metaops config set journal.enabled true")
	fmt.Println()

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	printHeader("Current configuration")

	path, err := configPath()
	if err != nil {
		return err
	}
	if configExists(path) {
		color.Yellow("  Config file: %s\n\n", path)
	} else {
		color.Yellow("  Using default configuration (no config file)\n\n")
	}

	data, _ := yaml.Marshal(cfg)
	fmt.Println("  " + strings.ReplaceAll(string(data), "\n", "\n  "))
	fmt.Println()

	printHeader("Environment variables")

	table := newTable("Variable", "Status")
	envVars := []struct {
		name    string
		envName string
	}{
		{"Shopify token", cfg.Shopify.AccessTokenEnv},
		{"Store override", config.StoreURLEnv},
		{"PostgreSQL user", cfg.Journal.Postgres.UsernameEnv},
		{"PostgreSQL password", cfg.Journal.Postgres.PasswordEnv},
		{"ClickHouse user", cfg.Journal.ClickHouse.UsernameEnv},
		{"ClickHouse password", cfg.Journal.ClickHouse.PasswordEnv},
	}

	for _, ev := range envVars {
		status := color.RedString("not set")
		if os.Getenv(ev.envName) != "" {
			status = color.GreenString("set")
		}
		table.Append([]string{ev.name + " (" + ev.envName + ")", status})
	}

	table.Render()
	fmt.Println()

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := configPath()
	if err != nil {
		return err
	}
	fileCfg, err := config.ReadFrom(path)
	if err != nil {
		return err
	}

	if err := fileCfg.Set(key, value); err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	if err := config.SaveTo(fileCfg, path); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	color.Green("  ✓ Set %s = %s", key, value)
	fmt.Println()
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value, err := cfg.Get(key)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Printf("  %s = %s\n", key, value)
	fmt.Println()
	return nil
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		fmt.Printf("  %-32s %s\n", key, color.HiBlackString(value))
	}
	fmt.Println()
	return nil
}
