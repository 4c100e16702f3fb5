package services

import (
	"context"
	"log"
)

// swapImage runs the image side of a record write as a compensating
// sequence over two independent stores:
//
//  1. store the new image (skipped when upload is nil; commit gets oldRef),
//  2. commit the record pointing at the new reference,
//  3. delete oldRef.
//
// If commit fails the new image is deleted and commit's error is returned,
// so no record ever references a missing file. A failed step 3 only leaves
// an unreferenced file behind and is logged. The steps must stay sequential.
func (s *InventoryService) swapImage(ctx context.Context, oldRef string, upload *ImageUpload, commit func(ref string) error) (string, error) {
	if upload == nil {
		return oldRef, commit(oldRef)
	}

	var (
		newRef string
		err    error
	)
	if oldRef == "" {
		newRef, err = s.images.Store(ctx, upload.Data, upload.Filename)
	} else {
		newRef, err = s.images.Replace(ctx, oldRef, upload.Data, upload.Filename)
	}
	if err != nil {
		return "", err
	}

	if err := commit(newRef); err != nil {
		if cleanupErr := s.images.Delete(ctx, newRef); cleanupErr != nil {
			log.Printf("Warning: failed to remove orphaned image %s: %v", newRef, cleanupErr)
		}
		return "", err
	}

	if oldRef != "" && oldRef != newRef {
		if err := s.images.Delete(ctx, oldRef); err != nil {
			log.Printf("Warning: superseded image %s was not deleted: %v", oldRef, err)
		}
	}
	return newRef, nil
}
