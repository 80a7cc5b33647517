package models

// MediaItem is one image attached to a product
type MediaItem struct {
	ID     string `json:"id"`
	Alt    string `json:"alt"`
	URL    string `json:"url"`
	Status string `json:"status"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// MediaMove repositions a media item
type MediaMove struct {
	ID          string `json:"id"`
	NewPosition string `json:"newPosition"`
}

// UploadFile describes a local file to stage for upload
type UploadFile struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// StagedParameter is a form field the upload target requires
type StagedParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedTarget is a pre-signed upload destination
type StagedTarget struct {
	URL         string            `json:"url"`
	ResourceURL string            `json:"resourceUrl"`
	Parameters  []StagedParameter `json:"parameters"`
}

// FileRecord is a permanent file created from an uploaded resource
type FileRecord struct {
	ID         string `json:"id"`
	Alt        string `json:"alt"`
	FileStatus string `json:"fileStatus"`
	URL        string `json:"url,omitempty"`
}
