package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/badno/metaops/internal/database"
	"github.com/badno/metaops/internal/database/clickhouse"
	"github.com/badno/metaops/internal/database/postgres"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	statsDays    int
	syncFull     bool
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Save journal commands",
	Long:  "Commands for the optional PostgreSQL save journal and its ClickHouse mirror",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the journal schema",
	Long:  "Runs the PostgreSQL migrations and, when enabled, creates the ClickHouse tables",
	RunE:  runDBInit,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show journal status",
	RunE:  runDBStatus,
}

var dbHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent save runs",
	RunE:  runDBHistory,
}

var dbSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy save runs to ClickHouse",
	RunE:  runDBSync,
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the last journal migration",
	RunE:  runDBRollback,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily save activity from ClickHouse",
	RunE:  runDBStats,
}

func init() {
	dbHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
	dbStatsCmd.Flags().IntVar(&statsDays, "days", 30, "Days to include")
	dbSyncCmd.Flags().BoolVar(&syncFull, "full", false, "Copy every run, not just new ones")

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbHistoryCmd)
	dbCmd.AddCommand(dbSyncCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbRollbackCmd)
}

// getDBClient creates a PostgreSQL client from configuration
func getDBClient() (*postgres.Client, error) {
	pg := cfg.Journal.Postgres
	pgConfig := postgres.DefaultConfig()
	pgConfig.Host = pg.Host
	pgConfig.Port = pg.Port
	pgConfig.Database = pg.Database
	pgConfig.Username = os.Getenv(pg.UsernameEnv)
	pgConfig.Password = os.Getenv(pg.PasswordEnv)
	pgConfig.SSLMode = pg.SSLMode

	if pgConfig.Username == "" {
		return nil, fmt.Errorf("PostgreSQL username not set. Set the %s environment variable", pg.UsernameEnv)
	}

	return postgres.NewClient(pgConfig), nil
}

// getClickHouseClient creates a ClickHouse client from configuration
func getClickHouseClient() *clickhouse.Client {
	ch := cfg.Journal.ClickHouse
	chConfig := clickhouse.ConfigFromEnv(ch.UsernameEnv, ch.PasswordEnv)
	chConfig.Host = ch.Host
	chConfig.Port = ch.Port
	chConfig.Database = ch.Database
	chConfig.Secure = ch.Secure
	return clickhouse.NewClient(chConfig)
}

// openJournal connects the journal backends; close releases them
func openJournal(ctx context.Context) (*database.Journal, func(), error) {
	pg, err := getDBClient()
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}

	closers := []func(){pg.Close}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if !cfg.Journal.ClickHouse.Enabled {
		return database.NewJournal(postgres.NewSaveRunRepo(pg), nil), closeAll, nil
	}

	ch := getClickHouseClient()
	if err := ch.Connect(ctx); err != nil {
		log.Warnf("ClickHouse mirror unavailable: %v", err)
		return database.NewJournal(postgres.NewSaveRunRepo(pg), nil), closeAll, nil
	}
	closers = append(closers, func() { ch.Close() })
	return database.NewJournal(postgres.NewSaveRunRepo(pg), ch), closeAll, nil
}

func runDBInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Connecting to PostgreSQL...")
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	color.Green("✓ Connected to database")

	names, _ := postgres.MigrationNames()
	fmt.Printf("Running %d migration files...\n", len(names))
	if err := client.RunMigrations(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("✓ Database schema initialized")

	version, dirty, err := client.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration version: %d", version)
	if dirty {
		color.Yellow(" (dirty)")
	}
	fmt.Println()

	if cfg.Journal.ClickHouse.Enabled {
		ch := getClickHouseClient()
		fmt.Println("\nConnecting to ClickHouse...")
		if err := ch.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		defer ch.Close()

		if err := ch.InitSchema(ctx); err != nil {
			return err
		}
		color.Green("✓ ClickHouse tables created")
	}

	color.Green("\n✓ Journal initialization complete")
	if !cfg.Journal.Enabled {
		fmt.Println("\nTo record saves, run:")
		fmt.Println("  metaops config set journal.enabled true")
	}
	return nil
}

func runDBRollback(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	if err := client.RollbackMigration(); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, _ := client.MigrationVersion()
	color.Green("✓ Rolled back to migration version %d", version)
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Checking database connection...")
	if err := client.Connect(ctx); err != nil {
		color.Red("✗ Connection failed: %v", err)
		return nil
	}
	defer client.Close()

	color.Green("✓ Connected")

	fmt.Println("\n" + color.CyanString("Journal"))
	enabled := color.YellowString("disabled")
	if cfg.Journal.Enabled {
		enabled = color.GreenString("enabled")
	}
	fmt.Printf("  Recording:   %s\n", enabled)

	version, dirty, err := client.MigrationVersion()
	if err != nil {
		fmt.Printf("  Migration:   %s\n", color.YellowString("not initialized"))
	} else {
		status := fmt.Sprintf("v%d", version)
		if dirty {
			status += color.YellowString(" (dirty)")
		}
		fmt.Printf("  Migration:   %s\n", status)
	}

	if count, err := postgres.NewSaveRunRepo(client).Count(ctx); err == nil {
		fmt.Printf("  Save runs:   %d\n", count)
	}

	stats, err := client.GetTableStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get table stats: %w", err)
	}

	if len(stats) > 0 {
		fmt.Println("\n" + color.CyanString("Table Statistics"))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Table", "Rows", "Size"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, s := range stats {
			table.Append([]string{s.TableName, fmt.Sprintf("%d", s.RowCount), s.Size})
		}
		table.Render()
	}

	poolStats := client.Stats()
	if poolStats != nil {
		fmt.Println("\n" + color.CyanString("Connection Pool"))
		fmt.Printf("  Total conns:      %d\n", poolStats.TotalConns())
		fmt.Printf("  Idle conns:       %d\n", poolStats.IdleConns())
		fmt.Printf("  Acquired conns:   %d\n", poolStats.AcquiredConns())
	}

	if cfg.Journal.ClickHouse.Enabled {
		ch := getClickHouseClient()
		fmt.Println("\n" + color.CyanString("ClickHouse"))
		if err := ch.Connect(ctx); err != nil {
			color.Red("  ✗ Connection failed: %v", err)
			return nil
		}
		defer ch.Close()

		tables, err := ch.GetTableInfo(ctx)
		if err != nil {
			return err
		}
		for _, t := range tables {
			fmt.Printf("  %-22s %8d rows  %s\n", t.Name, t.Rows, t.Engine)
		}
	}

	return nil
}

func runDBHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	printHeader("Save history")

	client, err := getDBClient()
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	runs, err := database.NewJournal(postgres.NewSaveRunRepo(client), nil).Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		color.Yellow("  No save runs recorded")
		fmt.Println()
		return nil
	}

	table := newTable("Started", "Store", "Changes", "Products", "Batches", "Result")
	for _, r := range runs {
		outcome := color.GreenString("ok")
		switch {
		case len(r.Errors) > 0:
			outcome = color.RedString("%d errors", len(r.Errors))
		case r.Cancelled:
			outcome = color.YellowString("cancelled")
		}
		table.Append([]string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Store,
			fmt.Sprintf("%d", r.Changes),
			fmt.Sprintf("%d/%d", r.Completed, r.Updates),
			fmt.Sprintf("%d", r.BatchesProcessed),
			outcome,
		})
	}
	table.Render()
	fmt.Println()

	for _, r := range runs {
		if len(r.Errors) == 0 {
			continue
		}
		color.Red("  %s", r.ID)
		for _, e := range r.Errors {
			fmt.Printf("    • %s\n", truncate(strings.TrimSpace(e), 100))
		}
	}
	return nil
}

func runDBSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	ch := getClickHouseClient()
	if err := ch.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	defer ch.Close()

	syncer := clickhouse.NewSyncer(postgres.NewSaveRunRepo(client), ch)

	var result *clickhouse.SyncResult
	if syncFull {
		result, err = syncer.SyncSince(ctx, time.Time{})
	} else {
		result, err = syncer.SyncIncremental(ctx)
	}
	if err != nil {
		return err
	}

	color.Green("✓ Synced %d save runs in %s", result.RecordsSynced, result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	for _, e := range result.Errors {
		color.Yellow("  ⚠ %s", e)
	}
	return nil
}

func runDBStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	printHeader("Daily save activity")

	ch := getClickHouseClient()
	if err := ch.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	defer ch.Close()

	stats, err := ch.GetDailyStats(ctx, statsDays)
	if err != nil {
		return err
	}

	table := newTable("Date", "Store", "Runs", "Successful", "Changes", "Batches", "Errors")
	for _, s := range stats {
		table.Append([]string{
			s.Date.Format("2006-01-02"),
			s.Store,
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%d", s.SuccessfulRuns),
			fmt.Sprintf("%d", s.Changes),
			fmt.Sprintf("%d", s.Batches),
			fmt.Sprintf("%d", s.Errors),
		})
	}
	table.Render()
	fmt.Println()
	return nil
}
