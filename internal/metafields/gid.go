package metafields

import (
	"encoding/json"
	"fmt"
	"strings"
)

const productGIDPrefix = "gid://shopify/Product/"

// ParseGIDList decodes a JSON-array reference value.
// Empty or malformed input yields an empty list.
func ParseGIDList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}

	var raw []any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return []string{}
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids
}

// SerializeGIDList encodes ids as a JSON array
func SerializeGIDList(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// AddToList appends ids to a list value, skipping ones already present
func AddToList(value string, ids ...string) string {
	list := ParseGIDList(value)
	seen := make(map[string]bool, len(list))
	for _, id := range list {
		seen[id] = true
	}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		list = append(list, id)
	}
	return SerializeGIDList(list)
}

// RemoveFromList drops ids from a list value
func RemoveFromList(value string, ids ...string) string {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	list := ParseGIDList(value)
	kept := make([]string, 0, len(list))
	for _, id := range list {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	return SerializeGIDList(kept)
}

// ExtractID returns the numeric tail of a gid
func ExtractID(gid string) string {
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		return gid[i+1:]
	}
	return gid
}

// ToProductGID turns a numeric product id into a gid
func ToProductGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return productGIDPrefix + id
}

// ModelInfoText renders the model_info line for a model record
func ModelInfoText(height, sizeWorn string) string {
	return fmt.Sprintf("Model is %s tall and wearing a size %s", height, sizeWorn)
}
