package sojourner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tinyland-inc/sojourner-relay/pkg/logger"
)

// manifestMetadataKey is the S3 user-metadata key the manifest is stored
// under (surfaces as x-amz-meta-manifest).
const manifestMetadataKey = "manifest"

// maxManifestBytes caps the manifest so it fits S3's 2 KB user-metadata
// budget together with the header name.
const maxManifestBytes = 1900

// s3API is the slice of the S3 client the gateway uses, kept as an interface
// so outcome classification is testable without a bucket.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds the connection settings for an S3-compatible Sojourner
// bucket (AWS or MinIO).
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3Client stores uploads as bucket objects keyed client-name/filename, with
// the manifest carried as object metadata. Client directories are the
// top-level common prefixes.
type S3Client struct {
	api    s3API
	bucket string
}

func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("sojourner: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("sojourner: loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and friends route by path, not virtual host.
			o.UsePathStyle = true
		}
	})

	return &S3Client{api: api, bucket: cfg.Bucket}, nil
}

// newS3ClientWithAPI wires a stub API in tests.
func newS3ClientWithAPI(api s3API, bucket string) *S3Client {
	return &S3Client{api: api, bucket: bucket}
}

// Store uploads content for clientName under filename. The returned Outcome
// is the single result of the attempt; internal errors are logged and
// classified, never propagated.
func (c *S3Client) Store(ctx context.Context, clientName, filename string, content []byte, manifest string) Outcome {
	if !validManifest(manifest) {
		return OutcomeMetadataError
	}

	key := clientName + "/" + filename

	// The backend is authoritative for collisions: an object already at the
	// key means BlobExists, regardless of who put it there.
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		return OutcomeBlobExists
	case !isNotFound(err):
		logger.ErrorCF("sojourner", "head before store failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return classify(err)
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(content),
		Metadata: map[string]string{manifestMetadataKey: manifest},
	})
	if err != nil {
		logger.ErrorCF("sojourner", "store failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return classify(err)
	}

	return OutcomeSuccess
}

// ListAllDirectories enumerates the known client names.
func (c *S3Client) ListAllDirectories(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var continuation *string

	for {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Delimiter:         aws.String("/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("sojourner: listing directories: %w", err)
		}

		for _, p := range out.CommonPrefixes {
			if p.Prefix != nil {
				seen[strings.TrimSuffix(*p.Prefix, "/")] = struct{}{}
			}
		}

		if out.NextContinuationToken == nil {
			break
		}
		continuation = out.NextContinuationToken
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// validManifest enforces S3 user-metadata constraints: printable ASCII and a
// bounded size. A manifest outside these is a MetadataError, caught before
// any bytes move.
func validManifest(manifest string) bool {
	if len(manifest) > maxManifestBytes {
		return false
	}
	for _, r := range manifest {
		if r > 126 || (r < 32 && r != '\n' && r != '\t') {
			return false
		}
	}
	return true
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "404"
	}
	return false
}

// classify maps a backend error to an Outcome. Transient service trouble and
// transport failures are UploadError (a retry by the user may succeed);
// metadata rejections are MetadataError; anything else is Unknown.
func classify(err error) Outcome {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		// No structured error means the request never got a response:
		// connection refused, timeout, context cancellation.
		return OutcomeUploadError
	}

	switch apiErr.ErrorCode() {
	case "InternalError", "ServiceUnavailable", "SlowDown", "RequestTimeout", "OperationAborted":
		return OutcomeUploadError
	case "InvalidArgument", "MetadataTooLarge":
		return OutcomeMetadataError
	default:
		return OutcomeUnknown
	}
}
