package onedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

type uploadSessionResponse struct {
	UploadURL          string `json:"uploadUrl"`
	ExpirationDateTime string `json:"expirationDateTime"`
}

// InitializeFrontendMultipartUpload creates a Graph upload session and hands
// its URL straight back as the MultipartInitResult's SessionURL: OneDrive is
// a single-session resumable provider, unlike S3's per-part presigned URLs,
// so the front end PUTs sequential Content-Range chunks against this one
// URL instead of per-part URLs.
func (d *Driver) InitializeFrontendMultipartUpload(ctx context.Context, subPath string, fileSize, partSize int64) (*driver.MultipartInitResult, error) {
	payload, _ := json.Marshal(map[string]any{
		"item": map[string]any{"@microsoft.graph.conflictBehavior": "replace"},
	})
	resp, err := d.do(ctx, http.MethodPost, d.itemURL(subPath, "/createUploadSession"), strings.NewReader(string(payload)),
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, apperrors.Driver(err, "creating upload session for %s", subPath)
	}
	defer resp.Body.Close()

	var sess uploadSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, apperrors.Driver(err, "decoding upload session for %s", subPath)
	}

	totalParts := int((fileSize + partSize - 1) / partSize)
	if totalParts == 0 {
		totalParts = 1
	}
	return &driver.MultipartInitResult{
		UploadID:   sess.UploadURL,
		Strategy:   "onedrive-resumable-session",
		PartSize:   partSize,
		TotalParts: totalParts,
		SessionURL: sess.UploadURL,
	}, nil
}

// RefreshMultipartUrls is a no-op: OneDrive's single session URL does not
// expire mid-chunk the way an S3 presigned part URL does, within the
// session's own expiration window.
func (d *Driver) RefreshMultipartUrls(ctx context.Context, subPath, uploadID string, partNumbers []int) (map[int]string, error) {
	urls := make(map[int]string, len(partNumbers))
	for _, n := range partNumbers {
		urls[n] = uploadID
	}
	return urls, nil
}

// CompleteFrontendMultipartUpload confirms the item materialized after the
// client PUT its final chunk; Graph completes the upload automatically once
// every byte range has been received, so this only verifies the result.
func (d *Driver) CompleteFrontendMultipartUpload(ctx context.Context, subPath, uploadID string, parts []driver.CompletedPart) (*driver.UploadResult, error) {
	entry, err := d.GetFileInfo(ctx, subPath)
	if err != nil {
		return nil, apperrors.Driver(err, "verifying completed upload for %s", subPath)
	}
	return &driver.UploadResult{StoragePath: subPath, ETag: entry.ETag}, nil
}

// AbortFrontendMultipartUpload cancels an in-progress session by issuing
// DELETE against its upload URL, per Graph's resumable-upload contract.
func (d *Driver) AbortFrontendMultipartUpload(ctx context.Context, subPath, uploadID string) error {
	resp, err := d.do(ctx, http.MethodDelete, uploadID, nil, nil)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil
		}
		return apperrors.Driver(err, "aborting upload session for %s", subPath)
	}
	resp.Body.Close()
	return nil
}

// ListMultipartUploads is not exposed by Graph as a listable resource;
// sessions are addressed only by the URL the client already holds.
func (d *Driver) ListMultipartUploads(ctx context.Context, subPath string) ([]string, error) {
	return nil, nil
}

type uploadSessionStatus struct {
	NextExpectedRanges []string `json:"nextExpectedRanges"`
}

// ListMultipartParts queries Graph's session status endpoint for the byte
// ranges still outstanding, translating them into the part-number shape the
// ledger's resume path expects.
func (d *Driver) ListMultipartParts(ctx context.Context, subPath, uploadID string) (*driver.ListPartsResult, error) {
	resp, err := d.do(ctx, http.MethodGet, uploadID, nil, nil)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return &driver.ListPartsResult{UploadNotFound: true}, nil
		}
		return nil, apperrors.Driver(err, "checking upload session status for %s", subPath)
	}
	defer resp.Body.Close()

	var status uploadSessionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, apperrors.Driver(err, "decoding upload session status for %s", subPath)
	}
	if len(status.NextExpectedRanges) == 0 {
		return &driver.ListPartsResult{}, nil
	}
	return &driver.ListPartsResult{Parts: []driver.PartInfo{{PartNumber: 0, ETag: fmt.Sprintf("next:%s", status.NextExpectedRanges[0])}}}, nil
}
