package source

import (
	"context"

	"github.com/badno/metaops/pkg/models"
)

// Capability represents a collection a connector can read
type Capability string

const (
	CapabilityProducts    Capability = "products"
	CapabilityPages       Capability = "pages"
	CapabilityCollections Capability = "collections"
	CapabilityModels      Capability = "models"
)

// Connector reads the full read-side state from a store
type Connector interface {
	// Name returns the connector's unique identifier
	Name() string

	// Capabilities returns the collections this connector can read
	Capabilities() []Capability

	// Connect validates credentials and connectivity
	Connect(ctx context.Context) error

	// Close cleans up any resources
	Close() error

	// Snapshot fetches every product, page, collection and model.
	// Every product carries all managed metafield keys.
	Snapshot(ctx context.Context) (*models.Snapshot, error)

	// Test performs a connectivity and credentials test
	Test(ctx context.Context) error
}

// HasCapability checks if a connector supports a specific capability
func HasCapability(c Connector, cap Capability) bool {
	for _, capability := range c.Capabilities() {
		if capability == cap {
			return true
		}
	}
	return false
}

// BaseConnector provides common functionality for connectors
type BaseConnector struct {
	name         string
	capabilities []Capability
	connected    bool
}

// NewBaseConnector creates a new base connector with common fields
func NewBaseConnector(name string, caps []Capability) *BaseConnector {
	return &BaseConnector{
		name:         name,
		capabilities: caps,
	}
}

func (b *BaseConnector) Name() string {
	return b.name
}

func (b *BaseConnector) Capabilities() []Capability {
	return b.capabilities
}

func (b *BaseConnector) IsConnected() bool {
	return b.connected
}

func (b *BaseConnector) SetConnected(connected bool) {
	b.connected = connected
}

// Normalize fills missing metafield keys and nil slices so callers can rely
// on a complete shape.
func Normalize(s *models.Snapshot) *models.Snapshot {
	if s.Products == nil {
		s.Products = []models.Product{}
	}
	for i := range s.Products {
		s.Products[i].EnsureMetafields()
		if s.Products[i].Tags == nil {
			s.Products[i].Tags = []string{}
		}
	}
	if s.Pages == nil {
		s.Pages = []models.Page{}
	}
	if s.Collections == nil {
		s.Collections = []models.Collection{}
	}
	if s.Models == nil {
		s.Models = []models.Model{}
	}
	return s
}
