// Package driver defines the capability-based storage driver abstraction
// (C4/C6): per-backend drivers implement a subset of capability interfaces,
// and DriverFactory verifies at creation time that the declared capability
// set matches what the concrete type actually implements.
package driver

import (
	"context"
	"io"
	"time"
)

// Type identifies a registered driver implementation.
type Type string

const (
	TypeS3       Type = "S3"
	TypeWebDAV   Type = "WEBDAV"
	TypeOneDrive Type = "ONEDRIVE"
	TypeLocal    Type = "LOCAL"
)

// Capability names a contract a driver may declare. DriverFactory checks
// that a driver implements every method REQUIRED_METHODS_BY_CAPABILITY
// lists for each capability it declares (see contract.go).
type Capability string

const (
	CapReader       Capability = "READER"
	CapWriter       Capability = "WRITER"
	CapDirectLink   Capability = "DIRECT_LINK"
	CapPresigned    Capability = "PRESIGNED"
	CapMultipart    Capability = "MULTIPART"
	CapAtomic       Capability = "ATOMIC"
	CapProxy        Capability = "PROXY"
	CapSearch       Capability = "SEARCH"
	CapUpstreamHTTP Capability = "UPSTREAM_HTTP"
)

// Entry is one item in a listDirectory result or the return of
// getFileInfo.
type Entry struct {
	Name        string
	IsDirectory bool
	Size        int64
	Modified    time.Time
	MimeType    string
	ETag        string
}

// DownloadRequest carries the optional byte range of a download.
type DownloadRequest struct {
	RangeStart int64
	RangeEnd   int64 // 0 means "to EOF"
	HasRange   bool
}

// DownloadResult is a byte stream plus the upstream headers that should be
// relayed to the caller.
type DownloadResult struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	AcceptRanges  bool
	ContentRange  string
	ETag          string
	LastModified  time.Time
}

// UploadOptions describes the body being uploaded via uploadFile.
type UploadOptions struct {
	FileName      string
	ContentType   string
	ContentLength int64
	UploadID      string // optional, for resuming a provider-side draft
}

// UploadResult is the outcome of a completed direct or multipart upload.
type UploadResult struct {
	StoragePath string
	PublicURL   string
	ETag        string
}

// PresignResult is the outcome of generateUploadUrl/generateDownloadUrl.
type PresignResult struct {
	URL        string
	Headers    map[string]string
	ExpiresIn  int
	TargetPath string
}

// UpstreamRequest is what a reverse proxy should fetch on the caller's
// behalf (used by drivers that support UPSTREAM_HTTP but not PRESIGNED,
// e.g. WebDAV over Basic auth).
type UpstreamRequest struct {
	URL     string
	Headers map[string]string
}

// MultipartInitResult is the outcome of initializeFrontendMultipartUpload.
type MultipartInitResult struct {
	UploadID      string
	Strategy      string
	PartSize      int64
	TotalParts    int
	PresignedURLs map[int]string // part number -> URL, for per-part providers
	SessionURL    string         // for single-session resumable providers
}

// PartInfo is one entry returned by listMultipartParts.
type PartInfo struct {
	PartNumber int
	ETag       string
	Size       int64
}

// ListPartsResult tolerates backend lifecycle cleanup per spec.md §4.6.1.
type ListPartsResult struct {
	Parts          []PartInfo
	UploadNotFound bool
}

// CompletedPart is one entry the client submits to complete().
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// ConnectivityReport is the outcome of a driver's static tester (config ->
// connectivity report), exposed to UI callers only.
type ConnectivityReport struct {
	OK      bool
	Message string
	Latency time.Duration
}

// Base is implemented by every driver regardless of declared capabilities.
type Base interface {
	GetType() Type
	HasCapability(c Capability) bool
	Initialize(ctx context.Context) error
	IsInitialized() bool
	Cleanup(ctx context.Context) error
}

// Reader is the READER capability's contract.
type Reader interface {
	ListDirectory(ctx context.Context, subPath string) ([]Entry, error)
	GetFileInfo(ctx context.Context, subPath string) (Entry, error)
	DownloadFile(ctx context.Context, subPath string, req DownloadRequest) (*DownloadResult, error)
}

// Writer is the WRITER capability's contract.
type Writer interface {
	UploadFile(ctx context.Context, subPath string, body io.Reader, opts UploadOptions) (*UploadResult, error)
	CreateDirectory(ctx context.Context, subPath string) error
	DeleteItems(ctx context.Context, subPaths []string) error
	RenameItem(ctx context.Context, fromSubPath, toSubPath string) error
}

// Presigner is the PRESIGNED capability's contract.
type Presigner interface {
	GenerateUploadURL(ctx context.Context, subPath string, opts UploadOptions) (*PresignResult, error)
	GenerateDownloadURL(ctx context.Context, subPath string) (*PresignResult, error)
}

// Multipart is the MULTIPART capability's contract: front-end-driven,
// presigned-per-part (or single-session-URL) upload protocol.
type Multipart interface {
	InitializeFrontendMultipartUpload(ctx context.Context, subPath string, fileSize, partSize int64) (*MultipartInitResult, error)
	CompleteFrontendMultipartUpload(ctx context.Context, subPath, uploadID string, parts []CompletedPart) (*UploadResult, error)
	AbortFrontendMultipartUpload(ctx context.Context, subPath, uploadID string) error
	ListMultipartUploads(ctx context.Context, subPath string) ([]string, error)
	ListMultipartParts(ctx context.Context, subPath, uploadID string) (*ListPartsResult, error)
	RefreshMultipartUrls(ctx context.Context, subPath, uploadID string, partNumbers []int) (map[int]string, error)
}

// UpstreamHTTP is the UPSTREAM_HTTP capability's contract.
type UpstreamHTTP interface {
	GenerateUpstreamRequest(ctx context.Context, subPath string) (*UpstreamRequest, error)
}

// Atomic is the ATOMIC capability's contract.
type Atomic interface {
	BatchRemoveItems(ctx context.Context, subPaths []string) error
	CopyItem(ctx context.Context, fromSubPath, toSubPath string) error
}

// DirectLinkProvider is the DIRECT_LINK capability's contract: a driver
// that can hand back a client-usable URL without a presign round trip
// (custom_host rewrite, or a natively public object URL).
type DirectLinkProvider interface {
	DirectLink(ctx context.Context, subPath string) (string, bool)
}

// Searcher is the SEARCH capability's contract.
type Searcher interface {
	Search(ctx context.Context, query string, limit, offset int) ([]Entry, int, error)
}

// Proxy is the PROXY capability's contract: downloadFile accepting a
// "proxy" user/identity for signed-link access. Concretely this is the same
// method as Reader.DownloadFile; the capability exists so DriverFactory's
// contract check can require it independently of READER.
type Proxy interface {
	DownloadFile(ctx context.Context, subPath string, req DownloadRequest) (*DownloadResult, error)
}
