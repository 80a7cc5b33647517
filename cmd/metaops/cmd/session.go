package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/badno/metaops/internal/config"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/internal/prefs"
	admin "github.com/badno/metaops/internal/shopify"
	"github.com/badno/metaops/internal/source"
	filesource "github.com/badno/metaops/internal/source/file"
	shopifysource "github.com/badno/metaops/internal/source/shopify"
	"github.com/badno/metaops/internal/state"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

var (
	snapshotFile string
	refresh      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotFile, "snapshot", "", "Read products from a snapshot JSON file instead of Shopify")
	rootCmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "Ignore the local cache and fetch a fresh snapshot")
}

// printHeader prints a section title with an underline
func printHeader(title string) {
	color.New(color.FgCyan, color.Bold).Printf("\n  %s\n", strings.ToUpper(title))
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()
}

// newTable returns a borderless table with cyan headers
func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetBorder(false)
	colors := make([]tablewriter.Colors, len(headers))
	for i := range colors {
		colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor}
	}
	table.SetHeaderColor(colors...)
	return table
}

// newProgressBar returns a bar in the house style
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("  "+description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)
}

// signalContext returns a context cancelled on Ctrl-C
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newAdminClient builds the GraphQL client from config
func newAdminClient() *admin.Client {
	return admin.NewClient(admin.Config{
		Store:             cfg.Shopify.Store,
		AccessTokenEnv:    cfg.Shopify.AccessTokenEnv,
		APIVersion:        cfg.Shopify.APIVersion,
		RequestsPerSecond: cfg.Shopify.RequestsPerSecond,
		MaxAttempts:       cfg.Retry.MaxAttempts,
		BaseWait:          cfg.Retry.BaseWait(),
		MaxThrottleWait:   cfg.Retry.ThrottleCap(),
		Timeout:           cfg.Shopify.Timeout(),
		Logger:            log,
	})
}

// connectedClient returns a client with credentials resolved
func connectedClient(ctx context.Context) (*admin.Client, error) {
	client := newAdminClient()
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// openCache loads the snapshot cache, starting empty on a bad file
func openCache() *state.Cache {
	cache := state.NewCache(cfg.Cache.File, cfg.Cache.MaxAge())
	if err := cache.Load(); err != nil {
		log.Warnf("ignoring snapshot cache: %v", err)
	}
	return cache
}

// sources registers every snapshot connector
func sources() (*source.Registry, error) {
	registry := source.NewRegistry()
	if err := registry.Register(shopifysource.NewConnector(newAdminClient())); err != nil {
		return nil, err
	}
	if snapshotFile != "" {
		if err := registry.Register(filesource.NewConnector(snapshotFile)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// loadSnapshot reads the current snapshot through the cache
func loadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	registry, err := sources()
	if err != nil {
		return nil, err
	}

	name := shopifysource.ConnectorName
	var cache source.SnapshotCache
	if snapshotFile != "" {
		name = filesource.ConnectorName
	} else {
		cache = openCache()
	}

	conn, err := registry.Get(name)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return source.NewLoader(conn, cache, log).Load(ctx, refresh)
}

// openDrafts loads the pending edits
func openDrafts() (*state.DirtyStore, error) {
	store := state.NewDirtyStore()
	if err := store.LoadFile(cfg.Drafts.File); err != nil {
		return nil, fmt.Errorf("failed to load pending edits: %w", err)
	}
	for _, c := range store.Dropped() {
		log.WithFields(logrus.Fields{"product": c.ProductID, "field": c.Field}).Warn("discarding pending edit for unknown field")
	}
	return store, nil
}

// saveDrafts persists the pending edits
func saveDrafts(store *state.DirtyStore) error {
	if err := store.SaveFile(cfg.Drafts.File); err != nil {
		return fmt.Errorf("failed to save pending edits: %w", err)
	}
	return nil
}

// openPrefs loads the preference store
func openPrefs() *prefs.Store {
	return prefs.Open(cfg.Prefs.File)
}

// configPath returns the active config file path
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.GetConfigPath()
}

// findProduct resolves a product by gid, numeric id or handle
func findProduct(products []models.Product, ref string) (models.Product, bool) {
	id := metafields.ToProductGID(ref)
	for _, p := range products {
		if p.ID == id || strings.EqualFold(p.Handle, ref) {
			return p, true
		}
	}
	return models.Product{}, false
}

// productLabel returns a short display name for a product id
func productLabel(products []models.Product, id string) string {
	for _, p := range products {
		if p.ID == id {
			return p.Title
		}
	}
	return metafields.ExtractID(id)
}

// truncate shortens s for table display
func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
