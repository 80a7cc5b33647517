package shopify

import (
	"context"
	"fmt"

	"github.com/badno/metaops/pkg/models"
)

// MaxMetafieldsPerSet is the upper bound of inputs per metafieldsSet call
const MaxMetafieldsPerSet = 25

type metafieldSetInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type metafieldIdentifier struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

// MetafieldsSet writes up to MaxMetafieldsPerSet values in one call.
// Transport failures return an error; validation problems return user errors.
func (c *Client) MetafieldsSet(ctx context.Context, inputs []models.MetafieldInput) (UserErrors, error) {
	if len(inputs) > MaxMetafieldsPerSet {
		return nil, fmt.Errorf("too many metafields in one call: %d > %d", len(inputs), MaxMetafieldsPerSet)
	}

	payload := make([]metafieldSetInput, 0, len(inputs))
	for _, in := range inputs {
		payload = append(payload, metafieldSetInput{
			OwnerID:   in.OwnerID,
			Namespace: in.Namespace,
			Key:       in.Key,
			Value:     in.Value,
			Type:      in.Type,
		})
	}

	var out struct {
		MetafieldsSet struct {
			UserErrors UserErrors `json:"userErrors"`
		} `json:"metafieldsSet"`
	}
	if err := c.Do(ctx, metafieldsSetMutation, map[string]any{"metafields": payload}, &out); err != nil {
		return nil, err
	}
	return out.MetafieldsSet.UserErrors, nil
}

// MetafieldsDelete removes the identified metafields
func (c *Client) MetafieldsDelete(ctx context.Context, inputs []models.MetafieldInput) (UserErrors, error) {
	payload := make([]metafieldIdentifier, 0, len(inputs))
	for _, in := range inputs {
		payload = append(payload, metafieldIdentifier{
			OwnerID:   in.OwnerID,
			Namespace: in.Namespace,
			Key:       in.Key,
		})
	}

	var out struct {
		MetafieldsDelete struct {
			UserErrors UserErrors `json:"userErrors"`
		} `json:"metafieldsDelete"`
	}
	if err := c.Do(ctx, metafieldsDeleteMutation, map[string]any{"metafields": payload}, &out); err != nil {
		return nil, err
	}
	return out.MetafieldsDelete.UserErrors, nil
}
