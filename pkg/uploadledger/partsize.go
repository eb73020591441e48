package uploadledger

import "github.com/cloudcrate/filegate/pkg/apperrors"

const (
	// DefaultPartSize is used when the caller doesn't request a specific
	// part size.
	DefaultPartSize = 5 * 1024 * 1024 // 5MiB

	minPartSize = 5 * 1024 * 1024        // 5MiB
	maxPartSize = 5 * 1024 * 1024 * 1024 // 5GiB
	maxParts    = 10000
	maxFileSize = 5 * 1024 * 1024 * 1024 * 1024 // 5TiB
)

// PlanParts computes the part size and total part count for fileSize,
// honoring a caller-requested partSize when given (clamped to
// [minPartSize, maxPartSize]) and otherwise growing the default part size
// just enough to keep total parts within maxParts.
func PlanParts(fileSize, requestedPartSize int64) (partSize int64, totalParts int, err error) {
	if fileSize < 0 {
		return 0, 0, apperrors.Validation("file size must be non-negative")
	}
	if fileSize > maxFileSize {
		return 0, 0, apperrors.Validation("file size exceeds the 5TiB maximum")
	}

	partSize = requestedPartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	if partSize < minPartSize {
		partSize = minPartSize
	}
	if partSize > maxPartSize {
		partSize = maxPartSize
	}

	if fileSize == 0 {
		return partSize, 1, nil
	}

	totalParts = int((fileSize + partSize - 1) / partSize)
	for totalParts > maxParts {
		partSize *= 2
		if partSize > maxPartSize {
			return 0, 0, apperrors.Validation("file size %d cannot be split into at most %d parts", fileSize, maxParts)
		}
		totalParts = int((fileSize + partSize - 1) / partSize)
	}
	return partSize, totalParts, nil
}
