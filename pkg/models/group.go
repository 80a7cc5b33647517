package models

// LinkStatus summarises how completely a group's members reference each other
type LinkStatus string

const (
	LinkStatusLinked          LinkStatus = "linked"
	LinkStatusPartiallyLinked LinkStatus = "partially_linked"
	LinkStatusNotLinked       LinkStatus = "not_linked"
)

// ProductGroup is a derived cluster of products sharing a title prefix.
// Groups are recomputed from every snapshot and never persisted.
type ProductGroup struct {
	ID          string     `json:"id"`
	BaseName    string     `json:"baseName"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"productType"`
	Members     []Product  `json:"members"`
	LinkStatus  LinkStatus `json:"linkStatus"`
}

// MemberIDs returns the ids of the group's members in order
func (g *ProductGroup) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
