package storage

import (
	"context"
	"encoding/hex"
	"io"
	"path"
	"strings"

	"golang.org/x/crypto/blake2b"
)

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	SignedURL(ctx context.Context, key string) (string, error) // fs returns "file://..." for dev
}

// DocumentKey is the content address of an uploaded course document:
// documents/<blake2b-256 hex>/<basename>. Re-uploading the same bytes lands
// on the same key.
func DocumentKey(filename string, data []byte) string {
	sum := blake2b.Sum256(data)
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		base = "document"
	}
	return path.Join("documents", hex.EncodeToString(sum[:]), base)
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, seg := range strings.Split(strings.ReplaceAll(key, "\\", "/"), "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}
