package core

import (
	"context"
	"io"
)

type (
	// Blob is the content of an uploaded file.
	Blob struct {
		Name        string // original file name
		ContentType string
		Size        int64
		Content     io.Reader
	}

	// BlobStore keeps uploaded file contents.
	BlobStore interface {
		// Put stores blob under key and returns its public URL.
		Put(ctx context.Context, key string, blob Blob) (string, error)
		Delete(ctx context.Context, key string) error
	}
)
