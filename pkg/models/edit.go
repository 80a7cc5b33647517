package models

// DirtyCell is a pending, unsaved edit of one product field
type DirtyCell struct {
	ProductID string       `json:"productId"`
	Field     MetafieldKey `json:"field"`
	Value     string       `json:"value"`
}

// Key returns the "productId:field" identity of the cell
func (c DirtyCell) Key() string {
	return CellKey(c.ProductID, c.Field)
}

// CellKey builds the "productId:field" identity used by the dirty store
func CellKey(productID string, field MetafieldKey) string {
	return productID + ":" + string(field)
}

// MetafieldValue is one typed metafield write within a product update
type MetafieldValue struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// BulkMetafieldUpdate carries all changed fields of a single product
type BulkMetafieldUpdate struct {
	ProductID  string           `json:"productId"`
	Metafields []MetafieldValue `json:"metafields"`
}

// MetafieldInput is a flattened set/delete entry sent upstream
type MetafieldInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value,omitempty"`
	Type      string `json:"type,omitempty"`
}

// MutationResult reports the outcome of persisting a set of updates
type MutationResult struct {
	Success          bool     `json:"success"`
	BatchesProcessed int      `json:"batchesProcessed"`
	Errors           []string `json:"errors"`
}
