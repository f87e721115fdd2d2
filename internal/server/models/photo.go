package models

import (
	"io"
	"time"
)

// Photo is the metadata record of one uploaded image. Filename is the key
// of the blob in the blob store.
type Photo struct {
	ID          string
	Filename    string
	Description string
	UserID      string
	CreatedAt   time.Time
}

// PhotoView is a Photo enriched with its uploader's username for display.
type PhotoView struct {
	Photo
	Username string
}

// Blob is an open object from the blob store. The caller must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}
