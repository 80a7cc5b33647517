package models

// Page is an online-store page that reference fields may point at
type Page struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Collection is a product collection
type Collection struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Model is a "model" metaobject describing a person wearing the product
type Model struct {
	ID       string `json:"id"`
	Handle   string `json:"handle,omitempty"`
	Name     string `json:"name"`
	Height   string `json:"height"`
	SizeWorn string `json:"size_worn"`
	Notes    string `json:"notes,omitempty"`
}

// Node is a resolved upstream object returned by id lookup
type Node struct {
	ID       string `json:"id"`
	Typename string `json:"__typename"`
	Title    string `json:"title,omitempty"`
	Handle   string `json:"handle,omitempty"`
	URL      string `json:"url,omitempty"`
	Alt      string `json:"alt,omitempty"`
}

// Snapshot is the full read-side state loaded at session start
type Snapshot struct {
	Products    []Product    `json:"products"`
	Pages       []Page       `json:"pages"`
	Collections []Collection `json:"collections"`
	Models      []Model      `json:"models"`
}
