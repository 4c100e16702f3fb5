package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const gcsPublicBase = "https://storage.googleapis.com"

// GCSStore keeps assets as objects in a publicly readable bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore wraps an existing client. prefix is prepended to object names,
// e.g. "items/".
func NewGCSStore(client *storage.Client, bucket, prefix string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("gcs store: storage client is nil")
	}
	b := strings.TrimSpace(bucket)
	if b == "" {
		return nil, errors.New("gcs store: bucket is empty")
	}
	p := strings.TrimLeft(strings.TrimSpace(prefix), "/")
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return &GCSStore{client: client, bucket: b, prefix: p}, nil
}

func (s *GCSStore) object(name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + name)
}

// Write uploads data in a single request.
func (s *GCSStore) Write(ctx context.Context, name, contentType string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	w := s.object(name).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.ChunkSize = 0
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", name, err)
	}
	return nil
}

// Delete removes the object; storage.ErrObjectNotExist is treated as success.
func (s *GCSStore) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	err := s.object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// URL returns the public object URL.
func (s *GCSStore) URL(name string) string {
	return fmt.Sprintf("%s/%s/%s%s", gcsPublicBase, s.bucket, s.prefix, url.PathEscape(name))
}

// Name parses URLs produced by URL for this bucket and prefix.
func (s *GCSStore) Name(ref string) (string, bool) {
	return parseGCSRef(ref, s.bucket, s.prefix)
}

func parseGCSRef(ref, bucket, prefix string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)
	if host != "storage.googleapis.com" && host != "storage.cloud.google.com" {
		return "", false
	}
	obj, ok := strings.CutPrefix(strings.TrimLeft(u.Path, "/"), bucket+"/"+prefix)
	if !ok || !validName(obj) {
		return "", false
	}
	return obj, true
}
