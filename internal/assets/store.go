// Package assets stores the image files attached to inventory items.
package assets

import "context"

// Store is a blob store addressed by generated names.
type Store interface {
	// Write persists data under name.
	Write(ctx context.Context, name, contentType string, data []byte) error
	// Delete removes name. Deleting an absent object returns nil.
	Delete(ctx context.Context, name string) error
	// URL is the reference the serving layer resolves for name.
	URL(name string) string
	// Name maps a reference produced by URL back to the object name.
	Name(ref string) (string, bool)
}
