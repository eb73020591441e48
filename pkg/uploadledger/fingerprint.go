package uploadledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// FingerprintInput is the tuple spec.md §4.9 hashes to deduplicate a
// resumed upload: two initialize calls describing the same logical upload
// (same actor, same destination, same file identity) collapse onto the
// same UploadSession row instead of opening a second one.
type FingerprintInput struct {
	PrincipalID     string
	StorageType     string
	StorageConfigID string
	MountID         string
	FSPath          string
	FileName        string
	FileSize        int64
}

// Fingerprint computes the deterministic dedup key for in.
func Fingerprint(in FingerprintInput) string {
	parts := []string{
		in.PrincipalID,
		in.StorageType,
		in.StorageConfigID,
		in.MountID,
		in.FSPath,
		in.FileName,
		strconv.FormatInt(in.FileSize, 10),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
