package shopify

import (
	"context"
	"fmt"
	"strings"

	"github.com/badno/metaops/pkg/models"
	"github.com/sirupsen/logrus"
)

// EnsureModelDefinition creates the model metaobject definition once per
// client. An "already exists" or TAKEN error counts as success.
func (c *Client) EnsureModelDefinition(ctx context.Context) error {
	c.modelDefMu.Lock()
	defer c.modelDefMu.Unlock()

	if c.modelDefOK {
		return nil
	}

	definition := map[string]any{
		"type": ModelType,
		"name": "Model",
		"access": map[string]any{
			"storefront": "PUBLIC_READ",
		},
		"fieldDefinitions": []map[string]any{
			{"key": "name", "name": "Name", "type": "single_line_text_field"},
			{"key": "height", "name": "Height", "type": "single_line_text_field"},
			{"key": "size_worn", "name": "Size Worn", "type": "single_line_text_field"},
			{"key": "notes", "name": "Notes", "type": "multi_line_text_field"},
		},
	}

	var out struct {
		MetaobjectDefinitionCreate struct {
			UserErrors UserErrors `json:"userErrors"`
		} `json:"metaobjectDefinitionCreate"`
	}
	if err := c.Do(ctx, metaobjectDefinitionCreateMutation, map[string]any{"definition": definition}, &out); err != nil {
		return fmt.Errorf("failed to create model definition: %w", err)
	}

	errs := out.MetaobjectDefinitionCreate.UserErrors
	for _, e := range errs {
		if strings.Contains(strings.ToLower(e.Message), "already exists") || e.Code == "TAKEN" {
			c.modelDefOK = true
			return nil
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to create model definition: %s", strings.Join(errs.Messages(), ", "))
	}

	c.log.WithField("type", ModelType).Info("created metaobject definition")
	c.modelDefOK = true
	return nil
}

// ResetModelDefinition forgets that the definition was ensured
func (c *Client) ResetModelDefinition() {
	c.modelDefMu.Lock()
	defer c.modelDefMu.Unlock()
	c.modelDefOK = false
}

func modelFields(m models.Model) []map[string]string {
	return []map[string]string{
		{"key": "name", "value": m.Name},
		{"key": "height", "value": m.Height},
		{"key": "size_worn", "value": m.SizeWorn},
		{"key": "notes", "value": m.Notes},
	}
}

type metaobjectResult struct {
	Metaobject *struct {
		ID     string `json:"id"`
		Handle string `json:"handle"`
	} `json:"metaobject"`
	UserErrors UserErrors `json:"userErrors"`
}

// CreateModel creates a model metaobject and returns it with its id
func (c *Client) CreateModel(ctx context.Context, m models.Model) (*models.Model, error) {
	if strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if err := c.EnsureModelDefinition(ctx); err != nil {
		return nil, err
	}

	var out struct {
		MetaobjectCreate metaobjectResult `json:"metaobjectCreate"`
	}
	vars := map[string]any{
		"metaobject": map[string]any{
			"type":   ModelType,
			"fields": modelFields(m),
		},
	}
	if err := c.Do(ctx, metaobjectCreateMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	if err := out.MetaobjectCreate.UserErrors.Err(); err != nil {
		return nil, err
	}
	if out.MetaobjectCreate.Metaobject != nil {
		m.ID = out.MetaobjectCreate.Metaobject.ID
		m.Handle = out.MetaobjectCreate.Metaobject.Handle
	}

	c.log.WithFields(logrus.Fields{"id": m.ID, "name": m.Name}).Info("created model")
	return &m, nil
}

// UpdateModel overwrites every field of an existing model
func (c *Client) UpdateModel(ctx context.Context, m models.Model) error {
	if m.ID == "" {
		return fmt.Errorf("model id is required")
	}

	var out struct {
		MetaobjectUpdate metaobjectResult `json:"metaobjectUpdate"`
	}
	vars := map[string]any{
		"id":         m.ID,
		"metaobject": map[string]any{"fields": modelFields(m)},
	}
	if err := c.Do(ctx, metaobjectUpdateMutation, vars, &out); err != nil {
		return fmt.Errorf("failed to update model: %w", err)
	}
	return out.MetaobjectUpdate.UserErrors.Err()
}

// DeleteModel deletes a model metaobject
func (c *Client) DeleteModel(ctx context.Context, id string) error {
	var out struct {
		MetaobjectDelete struct {
			DeletedID  string     `json:"deletedId"`
			UserErrors UserErrors `json:"userErrors"`
		} `json:"metaobjectDelete"`
	}
	if err := c.Do(ctx, metaobjectDeleteMutation, map[string]any{"id": id}, &out); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	return out.MetaobjectDelete.UserErrors.Err()
}
