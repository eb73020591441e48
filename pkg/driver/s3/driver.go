// Package s3 implements an S3-compatible storage driver (C6). Grounded on
// the teacher's pkg/store/content/s3 content store: path-based object keys,
// multipart upload lifecycle via CreateMultipartUpload/UploadPart/Complete,
// generalized from a single-tenant content store into a capability-based
// driver.Base that a DriverFactory registration can construct per
// StorageConfig.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudcrate/filegate/pkg/apperrors"
	"github.com/cloudcrate/filegate/pkg/driver"
)

// Params configures a Driver instance, sourced from StorageConfig.Config.
type Params struct {
	Bucket    string `mapstructure:"bucket" jsonschema:"required,description=S3 bucket name"`
	Region    string `mapstructure:"region" jsonschema:"description=AWS region, required unless endpoint is a non-AWS S3-compatible host"`
	Endpoint  string `mapstructure:"endpoint" jsonschema:"description=Override endpoint for S3-compatible backends (MinIO, R2, ...)"`
	PathStyle bool   `mapstructure:"path_style" jsonschema:"description=Force path-style addressing instead of virtual-hosted"`
	KeyPrefix string `mapstructure:"default_folder" jsonschema:"description=Key prefix applied to every object in this mount"`
	PartSize  int64  `mapstructure:"part_size" jsonschema:"description=Multipart part size in bytes, default 8MiB"`
}

// Credentials configures static access keys. Empty fields fall back to the
// SDK's default credential chain (env, instance profile, shared config).
type Credentials struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
}

const defaultPartSize = 8 * 1024 * 1024

// Driver is an S3-backed storage driver.
type Driver struct {
	driver.BaseDriver
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	keyPrefix string
	partSize  int64
	signedTTL time.Duration
}

// New builds an unconnected Driver; Initialize performs the AWS config
// resolution and bucket access check.
func New(ctx context.Context, p Params, creds Credentials, signedTTL time.Duration) (*Driver, error) {
	if p.Bucket == "" {
		return nil, apperrors.Validation("s3 driver requires bucket")
	}
	partSize := p.PartSize
	if partSize == 0 {
		partSize = defaultPartSize
	}
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if p.Region != "" {
		opts = append(opts, awsconfig.WithRegion(p.Region))
	}
	if creds.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.Driver(err, "loading aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if p.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.Endpoint)
		}
		o.UsePathStyle = p.PathStyle
	})

	return &Driver{
		BaseDriver: driver.NewBaseDriver(driver.TypeS3,
			driver.CapReader, driver.CapWriter, driver.CapPresigned, driver.CapMultipart, driver.CapAtomic),
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    p.Bucket,
		keyPrefix: strings.Trim(p.KeyPrefix, "/"),
		partSize:  partSize,
		signedTTL: signedTTL,
	}, nil
}

func (d *Driver) Initialize(ctx context.Context) error {
	if _, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(d.bucket)}); err != nil {
		return apperrors.Driver(err, "accessing bucket %s", d.bucket)
	}
	d.MarkInitialized()
	return nil
}

func (d *Driver) Cleanup(ctx context.Context) error { return nil }

func (d *Driver) key(subPath string) string {
	trimmed := strings.TrimPrefix(subPath, "/")
	if d.keyPrefix == "" {
		return trimmed
	}
	if trimmed == "" {
		return d.keyPrefix + "/"
	}
	return d.keyPrefix + "/" + trimmed
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func (d *Driver) ListDirectory(ctx context.Context, subPath string) ([]driver.Entry, error) {
	prefix := d.key(subPath)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var out []driver.Entry
	seen := map[string]bool{}
	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(d.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.Driver(err, "listing %s", subPath)
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, driver.Entry{Name: name, IsDirectory: true})
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, driver.Entry{
				Name:     name,
				Size:     aws.ToInt64(obj.Size),
				Modified: aws.ToTime(obj.LastModified),
				ETag:     strings.Trim(aws.ToString(obj.ETag), `"`),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Driver) GetFileInfo(ctx context.Context, subPath string) (driver.Entry, error) {
	key := d.key(subPath)
	head, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFound(err) {
			return driver.Entry{}, apperrors.NotFound("path not found: %s", subPath)
		}
		return driver.Entry{}, apperrors.Driver(err, "stat %s", subPath)
	}
	return driver.Entry{
		Name:     strings.TrimSuffix(subPath, "/"),
		Size:     aws.ToInt64(head.ContentLength),
		Modified: aws.ToTime(head.LastModified),
		MimeType: aws.ToString(head.ContentType),
		ETag:     strings.Trim(aws.ToString(head.ETag), `"`),
	}, nil
}

func (d *Driver) DownloadFile(ctx context.Context, subPath string, req driver.DownloadRequest) (*driver.DownloadResult, error) {
	key := d.key(subPath)
	input := &s3.GetObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(key)}
	if req.HasRange {
		rng := fmt.Sprintf("bytes=%d-", req.RangeStart)
		if req.RangeEnd > 0 {
			rng = fmt.Sprintf("bytes=%d-%d", req.RangeStart, req.RangeEnd)
		}
		input.Range = aws.String(rng)
	}
	out, err := d.client.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("path not found: %s", subPath)
		}
		return nil, apperrors.Driver(err, "downloading %s", subPath)
	}
	return &driver.DownloadResult{
		Body:          out.Body,
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
		AcceptRanges:  aws.ToString(out.AcceptRanges) != "",
		ContentRange:  aws.ToString(out.ContentRange),
		ETag:          strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified:  aws.ToTime(out.LastModified),
	}, nil
}

func (d *Driver) UploadFile(ctx context.Context, subPath string, body io.Reader, opts driver.UploadOptions) (*driver.UploadResult, error) {
	key := d.key(subPath)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperrors.Driver(err, "reading upload body for %s", subPath)
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(string(data)),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	out, err := d.client.PutObject(ctx, input)
	if err != nil {
		return nil, apperrors.Driver(err, "uploading %s", subPath)
	}
	return &driver.UploadResult{StoragePath: subPath, ETag: strings.Trim(aws.ToString(out.ETag), `"`)}, nil
}

func (d *Driver) CreateDirectory(ctx context.Context, subPath string) error {
	key := d.key(strings.TrimSuffix(subPath, "/") + "/")
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{Bucket: aws.String(d.bucket), Key: aws.String(key), Body: strings.NewReader("")})
	if err != nil {
		return apperrors.Driver(err, "creating directory marker %s", subPath)
	}
	return nil
}

func (d *Driver) DeleteItems(ctx context.Context, subPaths []string) error {
	return d.BatchRemoveItems(ctx, subPaths)
}

func (d *Driver) BatchRemoveItems(ctx context.Context, subPaths []string) error {
	if len(subPaths) == 0 {
		return nil
	}
	objs := make([]types.ObjectIdentifier, 0, len(subPaths))
	for _, sp := range subPaths {
		objs = append(objs, types.ObjectIdentifier{Key: aws.String(d.key(sp))})
	}
	_, err := d.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(d.bucket),
		Delete: &types.Delete{Objects: objs},
	})
	if err != nil {
		return apperrors.Driver(err, "deleting %d objects", len(subPaths))
	}
	return nil
}

func (d *Driver) RenameItem(ctx context.Context, fromSubPath, toSubPath string) error {
	if err := d.CopyItem(ctx, fromSubPath, toSubPath); err != nil {
		return err
	}
	return d.DeleteItems(ctx, []string{fromSubPath})
}

func (d *Driver) CopyItem(ctx context.Context, fromSubPath, toSubPath string) error {
	source := d.bucket + "/" + d.key(fromSubPath)
	_, err := d.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(d.bucket),
		Key:        aws.String(d.key(toSubPath)),
		CopySource: aws.String(source),
	})
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("path not found: %s", fromSubPath)
		}
		return apperrors.Driver(err, "copying %s to %s", fromSubPath, toSubPath)
	}
	return nil
}

func (d *Driver) GenerateUploadURL(ctx context.Context, subPath string, opts driver.UploadOptions) (*driver.PresignResult, error) {
	req, err := d.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key(subPath)),
		ContentType: aws.String(opts.ContentType),
	}, s3.WithPresignExpires(d.signedTTL))
	if err != nil {
		return nil, apperrors.Driver(err, "presigning upload for %s", subPath)
	}
	return &driver.PresignResult{URL: req.URL, Headers: req.SignedHeader, ExpiresIn: int(d.signedTTL.Seconds()), TargetPath: subPath}, nil
}

func (d *Driver) GenerateDownloadURL(ctx context.Context, subPath string) (*driver.PresignResult, error) {
	req, err := d.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(subPath)),
	}, s3.WithPresignExpires(d.signedTTL))
	if err != nil {
		return nil, apperrors.Driver(err, "presigning download for %s", subPath)
	}
	return &driver.PresignResult{URL: req.URL, Headers: req.SignedHeader, ExpiresIn: int(d.signedTTL.Seconds()), TargetPath: subPath}, nil
}
