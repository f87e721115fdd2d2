// Package blobstore keeps the raw image bytes, addressed by a sanitized
// file name, in the local filesystem or an S3-compatible object store.
package blobstore

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Store holds blobs by key. Put never replaces an existing blob; it returns
// common.ErrorAlreadyExists instead. Get and Delete return
// common.ErrorNotFound for an unknown key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*models.Blob, error)
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by stores that can hand out time-limited
// download URLs. The URL asks the client to save the object as filename.
type Presigner interface {
	PresignGet(ctx context.Context, key, filename string, expiry time.Duration) (string, error)
}

const defaultContentType = "application/octet-stream"

// ContentTypeFor guesses a MIME type from the extension of name.
func ContentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return defaultContentType
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces name to a flat ASCII file name safe to use as a
// blob key: accents are folded, path separators and whitespace become
// underscores, other characters are dropped, and leading or trailing dots
// and underscores are trimmed. The result may be empty.
func SanitizeFilename(name string) string {
	folded := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range folded {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}

	s := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}

var uniquePrefix = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_`)

// UniqueKey prefixes key with a random uuid.
func UniqueKey(key string) string {
	return uuid.NewString() + "_" + key
}

// OriginalFilename strips the prefix added by UniqueKey.
func OriginalFilename(key string) string {
	if name := uniquePrefix.ReplaceAllString(key, ""); name != "" {
		return name
	}
	return key
}

// AttachmentDisposition is the Content-Disposition value that makes clients
// save the response under the original name of key.
func AttachmentDisposition(key string) string {
	return `attachment; filename="` + strings.ReplaceAll(OriginalFilename(key), `"`, "") + `"`
}
