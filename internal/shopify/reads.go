package shopify

import (
	"context"
	"fmt"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	productsPageSize    = 50
	pagesPageSize       = 100
	collectionsPageSize = 100
	modelsPageSize      = 50
	mediaPageSize       = 100

	// MaxNodesPerRequest is the upper bound of ids per nodes lookup
	MaxNodesPerRequest = 250

	// ModelType is the metaobject type holding model records
	ModelType = "model"
)

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type connection[T any] struct {
	Edges []struct {
		Node   T      `json:"node"`
		Cursor string `json:"cursor"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

// fetchAll follows cursors on the root connection until hasNextPage is false
func fetchAll[T any](ctx context.Context, c *Client, root, query string, vars map[string]any, pageSize int) ([]T, error) {
	var all []T
	var cursor *string

	for page := 1; ; page++ {
		v := map[string]any{"first": pageSize, "after": cursor}
		for k, val := range vars {
			v[k] = val
		}

		var out map[string]connection[T]
		if err := c.Do(ctx, query, v, &out); err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", root, page, err)
		}

		conn := out[root]
		for _, e := range conn.Edges {
			all = append(all, e.Node)
		}

		c.log.WithFields(logrus.Fields{
			"resource": root,
			"page":     page,
			"total":    len(all),
		}).Debug("fetched page")

		if !conn.PageInfo.HasNextPage {
			break
		}
		endCursor := conn.PageInfo.EndCursor
		cursor = &endCursor
	}

	return all, nil
}

type productNode struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Handle        string   `json:"handle"`
	Vendor        string   `json:"vendor"`
	ProductType   string   `json:"productType"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status"`
	FeaturedImage *struct {
		URL     string `json:"url"`
		AltText string `json:"altText"`
	} `json:"featuredImage"`
	MediaCount *struct {
		Count int `json:"count"`
	} `json:"mediaCount"`
	Metafields connection[struct {
		Namespace string `json:"namespace"`
		Key       string `json:"key"`
		Value     string `json:"value"`
		Type      string `json:"type"`
	}] `json:"metafields"`
}

// Products reads every product with its custom metafields
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	nodes, err := fetchAll[productNode](ctx, c, "products", productsQuery, nil, productsPageSize)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(nodes))
	for _, n := range nodes {
		products = append(products, convertProduct(n))
	}
	return products, nil
}

// convertProduct maps a product node into a product whose metafield bag
// contains every managed key
func convertProduct(n productNode) models.Product {
	p := models.Product{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Vendor:      n.Vendor,
		ProductType: n.ProductType,
		Tags:        n.Tags,
		Status:      n.Status,
		Metafields:  models.NewMetafields(),
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Status == "" {
		p.Status = "ACTIVE"
	}
	if n.FeaturedImage != nil {
		p.FeaturedImage = &models.FeaturedImage{URL: n.FeaturedImage.URL, AltText: n.FeaturedImage.AltText}
	}
	if n.MediaCount != nil {
		p.MediaCount = n.MediaCount.Count
	}

	for _, e := range n.Metafields.Edges {
		mf := e.Node
		if mf.Namespace != metafields.Namespace || !metafields.IsKnown(mf.Key) {
			continue
		}
		p.Metafields[models.MetafieldKey(mf.Key)] = mf.Value
	}
	return p
}

// Pages reads every online-store page
func (c *Client) Pages(ctx context.Context) ([]models.Page, error) {
	return fetchAll[models.Page](ctx, c, "pages", pagesQuery, nil, pagesPageSize)
}

// Collections reads every collection
func (c *Client) Collections(ctx context.Context) ([]models.Collection, error) {
	return fetchAll[models.Collection](ctx, c, "collections", collectionsQuery, nil, collectionsPageSize)
}

type metaobjectNode struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Fields []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"fields"`
}

// Models reads every model metaobject, creating the definition first if needed
func (c *Client) Models(ctx context.Context) ([]models.Model, error) {
	if err := c.EnsureModelDefinition(ctx); err != nil {
		return nil, err
	}

	nodes, err := fetchAll[metaobjectNode](ctx, c, "metaobjects", metaobjectsQuery, map[string]any{"type": ModelType}, modelsPageSize)
	if err != nil {
		return nil, err
	}

	out := make([]models.Model, 0, len(nodes))
	for _, n := range nodes {
		m := models.Model{ID: n.ID, Handle: n.Handle}
		for _, f := range n.Fields {
			switch f.Key {
			case "name":
				m.Name = f.Value
			case "height":
				m.Height = f.Value
			case "size_worn":
				m.SizeWorn = f.Value
			case "notes":
				m.Notes = f.Value
			}
		}
		out = append(out, m)
	}
	return out, nil
}

type imageRef struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type rawNode struct {
	Typename string    `json:"__typename"`
	ID       string    `json:"id"`
	Alt      string    `json:"alt"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Status   string    `json:"status"`
	Image    *imageRef `json:"image"`
	Preview  *struct {
		Image *imageRef `json:"image"`
	} `json:"preview"`
}

func (n rawNode) url() string {
	if n.Image != nil && n.Image.URL != "" {
		return n.Image.URL
	}
	if n.Preview != nil && n.Preview.Image != nil {
		return n.Preview.Image.URL
	}
	return ""
}

// Nodes resolves ids in chunks of MaxNodesPerRequest.
// The result is index-aligned with ids; unresolved ids yield nil.
func (c *Client) Nodes(ctx context.Context, ids []string) ([]*models.Node, error) {
	result := make([]*models.Node, 0, len(ids))

	for start := 0; start < len(ids); start += MaxNodesPerRequest {
		end := start + MaxNodesPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		var out struct {
			Nodes []*rawNode `json:"nodes"`
		}
		if err := c.Do(ctx, nodesQuery, map[string]any{"ids": ids[start:end]}, &out); err != nil {
			return nil, fmt.Errorf("failed to resolve nodes: %w", err)
		}

		for i := range ids[start:end] {
			if i >= len(out.Nodes) || out.Nodes[i] == nil || out.Nodes[i].ID == "" {
				result = append(result, nil)
				continue
			}
			n := out.Nodes[i]
			result = append(result, &models.Node{
				ID:       n.ID,
				Typename: n.Typename,
				Title:    n.Title,
				Handle:   n.Handle,
				URL:      n.url(),
				Alt:      n.Alt,
			})
		}
	}

	return result, nil
}

// ProductMedia lists the images attached to a product
func (c *Client) ProductMedia(ctx context.Context, productID string) ([]models.MediaItem, error) {
	var out struct {
		Product *struct {
			Media connection[rawNode] `json:"media"`
		} `json:"product"`
	}
	vars := map[string]any{"id": metafields.ToProductGID(productID), "first": mediaPageSize}
	if err := c.Do(ctx, productMediaQuery, vars, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch product media: %w", err)
	}
	if out.Product == nil {
		return nil, fmt.Errorf("product not found: %s", productID)
	}

	items := make([]models.MediaItem, 0, len(out.Product.Media.Edges))
	for _, e := range out.Product.Media.Edges {
		n := e.Node
		if n.ID == "" {
			continue
		}
		item := models.MediaItem{ID: n.ID, Alt: n.Alt, URL: n.url(), Status: n.Status}
		if n.Image != nil {
			item.Width = n.Image.Width
			item.Height = n.Image.Height
		}
		items = append(items, item)
	}
	return items, nil
}
