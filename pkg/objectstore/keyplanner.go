// Package objectstore implements ObjectStore (C7): the storage-first façade
// used for share uploads and URL-ingest, where no mount/virtual-path
// context applies. Every operation resolves the storage config, obtains the
// driver through DriverCache, and enforces the driver's declared capability
// set before calling it.
package objectstore

import (
	"context"
	"crypto/rand"
	"path"
	"strings"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/models"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ExistsChecker reports whether an active record already occupies
// (storageConfigID, storagePath). Implemented by pkg/store's
// GetActiveByStoragePath (translated to a bool by the caller).
type ExistsChecker func(ctx context.Context, storageConfigID, storagePath string) (bool, error)

// PlanKey computes the storage path for a new object: defaultFolder joined
// with the caller's directory and filename, with collision resolution per
// the naming strategy (spec.md §4.6.2).
func PlanKey(ctx context.Context, exists ExistsChecker, storageConfigID, defaultFolder, dir, fileName string, strategy models.NamingStrategy) (string, error) {
	clean := strings.Trim(path.Clean("/"+strings.TrimPrefix(defaultFolder, "/")+"/"+strings.TrimPrefix(dir, "/")), "/")
	planned := path.Join("/", clean, fileName)

	if strategy == models.NamingOverwrite {
		return planned, nil
	}

	current := planned
	for attempt := 0; attempt < 10; attempt++ {
		taken, err := exists(ctx, storageConfigID, current)
		if err != nil {
			return "", err
		}
		if !taken {
			return current, nil
		}
		suffix, err := randomBase62(8)
		if err != nil {
			return "", err
		}
		current = withSuffix(planned, suffix)
	}
	return "", apperrors.Conflict("could not allocate a unique storage path for %s after 10 attempts", fileName)
}

func withSuffix(p, suffix string) string {
	ext := path.Ext(p)
	base := strings.TrimSuffix(p, ext)
	return base + "-" + suffix + ext
}

func randomBase62(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = base62Alphabet[int(b)%len(base62Alphabet)]
	}
	return string(out), nil
}
