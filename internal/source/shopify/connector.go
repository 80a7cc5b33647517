// Package shopify reads snapshots from the Shopify Admin GraphQL API.
package shopify

import (
	"context"

	admin "github.com/badno/metaops/internal/shopify"
	"github.com/badno/metaops/internal/source"
	"github.com/badno/metaops/pkg/models"
	"golang.org/x/sync/errgroup"
)

const ConnectorName = "shopify"

// Reader is the subset of the Admin client used to build a snapshot
type Reader interface {
	Connect(ctx context.Context) error
	Test(ctx context.Context) (string, error)
	Products(ctx context.Context) ([]models.Product, error)
	Pages(ctx context.Context) ([]models.Page, error)
	Collections(ctx context.Context) ([]models.Collection, error)
	Models(ctx context.Context) ([]models.Model, error)
}

var _ Reader = (*admin.Client)(nil)

// Connector implements source.Connector for a Shopify store
type Connector struct {
	*source.BaseConnector
	client Reader
}

// NewConnector creates a connector over client
func NewConnector(client Reader) *Connector {
	return &Connector{
		BaseConnector: source.NewBaseConnector(ConnectorName, []source.Capability{
			source.CapabilityProducts,
			source.CapabilityPages,
			source.CapabilityCollections,
			source.CapabilityModels,
		}),
		client: client,
	}
}

// Connect resolves credentials and the endpoint
func (c *Connector) Connect(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}
	if err := c.client.Connect(ctx); err != nil {
		return err
	}
	c.SetConnected(true)
	return nil
}

// Close cleans up resources
func (c *Connector) Close() error {
	c.SetConnected(false)
	return nil
}

// Test reads the shop name
func (c *Connector) Test(ctx context.Context) error {
	_, err := c.client.Test(ctx)
	return err
}

// Snapshot fetches the four collections in parallel. The first failure
// cancels the others.
func (c *Connector) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := c.client.Products(ctx)
		snap.Products = products
		return err
	})
	g.Go(func() error {
		pages, err := c.client.Pages(ctx)
		snap.Pages = pages
		return err
	})
	g.Go(func() error {
		collections, err := c.client.Collections(ctx)
		snap.Collections = collections
		return err
	})
	g.Go(func() error {
		ms, err := c.client.Models(ctx)
		snap.Models = ms
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return source.Normalize(snap), nil
}
