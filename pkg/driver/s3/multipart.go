package s3

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// InitializeFrontendMultipartUpload opens an S3 multipart upload and
// presigns one UploadPart URL per part, grounded on the teacher's
// BeginMultipartUpload/UploadPart pair (s3_multipart.go), generalized from
// server-side part transfer to front-end-presigned part transfer.
func (d *Driver) InitializeFrontendMultipartUpload(ctx context.Context, subPath string, fileSize, partSize int64) (*driver.MultipartInitResult, error) {
	key := d.key(subPath)
	created, err := d.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, apperrors.Driver(err, "creating multipart upload for %s", subPath)
	}
	uploadID := aws.ToString(created.UploadId)

	totalParts := int((fileSize + partSize - 1) / partSize)
	if totalParts == 0 {
		totalParts = 1
	}

	urls, err := d.presignParts(ctx, key, uploadID, partRange(totalParts))
	if err != nil {
		return nil, err
	}

	return &driver.MultipartInitResult{
		UploadID:      uploadID,
		Strategy:      "s3-multipart",
		PartSize:      partSize,
		TotalParts:    totalParts,
		PresignedURLs: urls,
	}, nil
}

func partRange(totalParts int) []int {
	out := make([]int, totalParts)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func (d *Driver) presignParts(ctx context.Context, key, uploadID string, partNumbers []int) (map[int]string, error) {
	urls := make(map[int]string, len(partNumbers))
	for _, n := range partNumbers {
		req, err := d.presign.PresignUploadPart(ctx, &s3.UploadPartInput{
			Bucket:     aws.String(d.bucket),
			Key:        aws.String(key),
			UploadId:   aws.String(uploadID),
			PartNumber: aws.Int32(int32(n)),
		}, s3.WithPresignExpires(d.signedTTL))
		if err != nil {
			return nil, apperrors.Driver(err, "presigning part %d", n)
		}
		urls[n] = req.URL
	}
	return urls, nil
}

// RefreshMultipartUrls re-presigns a subset of parts whose URLs the client
// let expire mid-upload.
func (d *Driver) RefreshMultipartUrls(ctx context.Context, subPath, uploadID string, partNumbers []int) (map[int]string, error) {
	return d.presignParts(ctx, d.key(subPath), uploadID, partNumbers)
}

// CompleteFrontendMultipartUpload submits the client-reported part/ETag list
// to S3's CompleteMultipartUpload, mirroring the teacher's sort-then-complete
// sequence in s3_multipart.go.
func (d *Driver) CompleteFrontendMultipartUpload(ctx context.Context, subPath, uploadID string, parts []driver.CompletedPart) (*driver.UploadResult, error) {
	sorted := make([]driver.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, p := range sorted {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(int32(p.PartNumber)),
		})
	}

	key := d.key(subPath)
	out, err := d.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(d.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return nil, apperrors.Driver(err, "completing multipart upload for %s", subPath)
	}
	return &driver.UploadResult{StoragePath: subPath, ETag: aws.ToString(out.ETag)}, nil
}

// AbortFrontendMultipartUpload cancels an in-progress upload. Idempotent:
// NoSuchUpload is swallowed, matching the teacher's AbortMultipartUpload.
func (d *Driver) AbortFrontendMultipartUpload(ctx context.Context, subPath, uploadID string) error {
	_, err := d.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(d.bucket),
		Key:      aws.String(d.key(subPath)),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		var nsu *types.NoSuchUpload
		if errors.As(err, &nsu) {
			return nil
		}
		return apperrors.Driver(err, "aborting multipart upload for %s", subPath)
	}
	return nil
}

// ListMultipartUploads returns in-progress upload IDs targeting subPath.
func (d *Driver) ListMultipartUploads(ctx context.Context, subPath string) ([]string, error) {
	out, err := d.client.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
		Bucket: aws.String(d.bucket),
		Prefix: aws.String(d.key(subPath)),
	})
	if err != nil {
		return nil, apperrors.Driver(err, "listing multipart uploads for %s", subPath)
	}
	ids := make([]string, 0, len(out.Uploads))
	for _, u := range out.Uploads {
		ids = append(ids, aws.ToString(u.UploadId))
	}
	return ids, nil
}

// ListMultipartParts reports which parts S3 has durably received, tolerating
// a backend-reclaimed (lifecycle-expired) upload per spec.md §4.6.1.
func (d *Driver) ListMultipartParts(ctx context.Context, subPath, uploadID string) (*driver.ListPartsResult, error) {
	out, err := d.client.ListParts(ctx, &s3.ListPartsInput{
		Bucket:   aws.String(d.bucket),
		Key:      aws.String(d.key(subPath)),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		var nsu *types.NoSuchUpload
		if errors.As(err, &nsu) {
			return &driver.ListPartsResult{UploadNotFound: true}, nil
		}
		return nil, apperrors.Driver(err, "listing parts for %s", subPath)
	}
	parts := make([]driver.PartInfo, 0, len(out.Parts))
	for _, p := range out.Parts {
		parts = append(parts, driver.PartInfo{
			PartNumber: int(aws.ToInt32(p.PartNumber)),
			ETag:       aws.ToString(p.ETag),
			Size:       aws.ToInt64(p.Size),
		})
	}
	return &driver.ListPartsResult{Parts: parts}, nil
}
