package model

import "path"

// Photo is a content-addressed image record. Path is relative to the data directory.
type Photo struct {
	Hash        string  `json:"hash"`
	Path        string  `json:"path"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// ContentType returns the MIME type matching the stored file extension.
func (p Photo) ContentType() string {
	switch path.Ext(p.Path) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// PhotoPayload is a raw photo as received from the chat transport.
type PhotoPayload struct {
	Name string
	Data []byte
}
