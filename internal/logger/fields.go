package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the gateway's storage
// plane. Use these keys consistently so log aggregation and querying stay
// uniform across mounts, drivers, and upload sessions.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Mount & Storage Backend
	// ========================================================================
	KeyMountID           = "mount_id"           // Mount identifier
	KeyMountPath         = "mount_path"         // Virtual mount path
	KeyStorageType       = "storage_type"       // Backend kind: S3, WEBDAV, ONEDRIVE, LOCAL
	KeyStorageConfigID   = "storage_config_id"  // StorageConfig identifier
	KeyStorageConfigName = "storage_config_name" // StorageConfig display name

	// ========================================================================
	// File System Operations
	// ========================================================================
	KeyVirtualPath = "virtual_path" // Mount-relative path as seen by the caller
	KeySubPath     = "sub_path"     // Driver-relative path within its storage root
	KeyOldPath     = "old_path"     // Source path for rename/move operations
	KeyNewPath     = "new_path"     // Destination path for rename/move operations
	KeySize        = "size"         // Object size in bytes

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeyOffset       = "offset"        // Byte offset for range reads
	KeyBytesRead    = "bytes_read"    // Actual bytes read
	KeyBytesWritten = "bytes_written" // Actual bytes written

	// ========================================================================
	// Principal & Access
	// ========================================================================
	KeyPrincipalID   = "principal_id"   // Authenticated principal (user or API key)
	KeyPrincipalKind = "principal_kind" // admin, user, api_key, public
	KeyClientIP      = "client_ip"      // Client IP address

	// ========================================================================
	// Upload Sessions (C9)
	// ========================================================================
	KeyUploadID       = "upload_id"       // UploadSession identifier
	KeyFingerprint    = "fingerprint"     // Idempotence fingerprint
	KeyUploadStrategy = "upload_strategy" // Driver-chosen multipart strategy
	KeyPartNumber     = "part_number"     // Multipart part number
	KeyTotalParts     = "total_parts"     // Total parts planned

	// ========================================================================
	// Share Links (C12) & Proxy Signatures (C11)
	// ========================================================================
	KeyShareID   = "share_id"   // ShareRecord identifier
	KeyShareSlug = "share_slug" // Public share slug
	KeyLinkMode  = "link_mode"  // direct, presigned, upstream_proxy, signed_proxy

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // apperrors.Code of a failed operation
	KeyOperation  = "operation"   // Operation name (upload, download, list, ...)
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts

	// ========================================================================
	// Driver Cache (C5)
	// ========================================================================
	KeyCacheHit      = "cache_hit"      // Cache hit indicator
	KeyCacheSize     = "cache_size"     // Current cache size
	KeyCacheCapacity = "cache_capacity" // Maximum cache capacity
	KeyEvicted       = "evicted"        // Number of entries evicted

	// ========================================================================
	// Directory Operations
	// ========================================================================
	KeyEntries = "entries" // Number of directory entries returned
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// Mount & Storage Backend
// ----------------------------------------------------------------------------

// MountID returns a slog.Attr for a mount identifier
func MountID(id string) slog.Attr {
	return slog.String(KeyMountID, id)
}

// MountPath returns a slog.Attr for a virtual mount path
func MountPath(p string) slog.Attr {
	return slog.String(KeyMountPath, p)
}

// StorageType returns a slog.Attr for a backend kind
func StorageType(t string) slog.Attr {
	return slog.String(KeyStorageType, t)
}

// StorageConfigID returns a slog.Attr for a StorageConfig identifier
func StorageConfigID(id string) slog.Attr {
	return slog.String(KeyStorageConfigID, id)
}

// ----------------------------------------------------------------------------
// File System Operations
// ----------------------------------------------------------------------------

// VirtualPath returns a slog.Attr for a mount-relative path
func VirtualPath(p string) slog.Attr {
	return slog.String(KeyVirtualPath, p)
}

// SubPath returns a slog.Attr for a driver-relative path
func SubPath(p string) slog.Attr {
	return slog.String(KeySubPath, p)
}

// OldPath returns a slog.Attr for source path in rename/move operations
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for destination path in rename/move operations
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// Size returns a slog.Attr for object size
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// ----------------------------------------------------------------------------
// I/O Operations
// ----------------------------------------------------------------------------

// Offset returns a slog.Attr for byte offset
func Offset(off int64) slog.Attr {
	return slog.Int64(KeyOffset, off)
}

// BytesRead returns a slog.Attr for actual bytes read
func BytesRead(n int64) slog.Attr {
	return slog.Int64(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written
func BytesWritten(n int64) slog.Attr {
	return slog.Int64(KeyBytesWritten, n)
}

// ----------------------------------------------------------------------------
// Principal & Access
// ----------------------------------------------------------------------------

// PrincipalID returns a slog.Attr for the acting principal
func PrincipalID(id string) slog.Attr {
	return slog.String(KeyPrincipalID, id)
}

// PrincipalKind returns a slog.Attr for the principal's kind
func PrincipalKind(kind string) slog.Attr {
	return slog.String(KeyPrincipalKind, kind)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ----------------------------------------------------------------------------
// Upload Sessions
// ----------------------------------------------------------------------------

// UploadID returns a slog.Attr for an upload session identifier
func UploadID(id string) slog.Attr {
	return slog.String(KeyUploadID, id)
}

// Fingerprint returns a slog.Attr for an upload session's idempotence key
func Fingerprint(fp string) slog.Attr {
	return slog.String(KeyFingerprint, fp)
}

// UploadStrategy returns a slog.Attr for a driver's chosen multipart strategy
func UploadStrategy(strategy string) slog.Attr {
	return slog.String(KeyUploadStrategy, strategy)
}

// PartNumber returns a slog.Attr for a multipart part number
func PartNumber(n int) slog.Attr {
	return slog.Int(KeyPartNumber, n)
}

// TotalParts returns a slog.Attr for the total planned part count
func TotalParts(n int) slog.Attr {
	return slog.Int(KeyTotalParts, n)
}

// ----------------------------------------------------------------------------
// Share Links & Proxy Signatures
// ----------------------------------------------------------------------------

// ShareID returns a slog.Attr for a ShareRecord identifier
func ShareID(id string) slog.Attr {
	return slog.String(KeyShareID, id)
}

// ShareSlug returns a slog.Attr for a public share slug
func ShareSlug(slug string) slog.Attr {
	return slog.String(KeyShareSlug, slug)
}

// LinkMode returns a slog.Attr for the resolved link strategy
func LinkMode(mode string) slog.Attr {
	return slog.String(KeyLinkMode, mode)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for an apperrors.Code
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Operation returns a slog.Attr for the operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// ----------------------------------------------------------------------------
// Driver Cache
// ----------------------------------------------------------------------------

// CacheHit returns a slog.Attr for cache hit indicator
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// CacheSize returns a slog.Attr for current cache size
func CacheSize(size int) slog.Attr {
	return slog.Int(KeyCacheSize, size)
}

// CacheCapacity returns a slog.Attr for maximum cache capacity
func CacheCapacity(capacity int) slog.Attr {
	return slog.Int(KeyCacheCapacity, capacity)
}

// Evicted returns a slog.Attr for number of entries evicted
func Evicted(n int) slog.Attr {
	return slog.Int(KeyEvicted, n)
}

// ----------------------------------------------------------------------------
// Directory Operations
// ----------------------------------------------------------------------------

// Entries returns a slog.Attr for number of directory entries
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}
