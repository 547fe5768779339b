package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/objectkey"
)

// Config options for the S3 gateway
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	Prefix          string // Optional key prefix, e.g. "media"
	PublicBaseURL   string // Optional public URL objects are served from (CDN)

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // SSE algorithm (AES256 or aws:kms)
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms algorithm

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist
}

// Client is the subset of the S3 API the gateway uses
type Client interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Gateway is an S3-compatible implementation of the simplemedia.Gateway interface
type Gateway struct {
	client    Client
	uploader  *manager.Uploader
	config    Config
	generator objectkey.Generator
}

// New creates a new S3-compatible gateway
func New(config Config) (*Gateway, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.Region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return NewWithClient(context.Background(), s3.NewFromConfig(awsCfg, s3Options...), config)
}

// NewWithClient creates a gateway over an existing client
func NewWithClient(ctx context.Context, client Client, config Config) (*Gateway, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	g := &Gateway{
		client:    client,
		uploader:  manager.NewUploader(client),
		config:    config,
		generator: objectkey.NewRecommendedGenerator(config.Prefix),
	}

	if config.CreateBucketIfNotExist {
		if err := g.createBucketIfNotExists(ctx); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return g, nil
}

// createBucketIfNotExists creates the bucket if it doesn't exist
func (g *Gateway) createBucketIfNotExists(ctx context.Context) error {
	_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(g.config.Bucket),
	})
	if err == nil {
		return nil
	}
	// MinIO answers HEAD on a missing bucket with a bare 400.
	if !hasErrorCode(err, "NotFound", "NoSuchBucket", "BadRequest") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(g.config.Bucket),
	}
	if g.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(g.config.Region),
		}
	}

	if _, err := g.client.CreateBucket(ctx, createInput); err != nil {
		if hasErrorCode(err, "BucketAlreadyExists", "BucketAlreadyOwnedByYou") {
			return nil
		}
		return err
	}
	return nil
}

// Upload stores data under a freshly generated key
func (g *Gateway) Upload(ctx context.Context, data []byte, kind simplemedia.AssetKind) (*simplemedia.UploadResult, error) {
	key := g.generator.GenerateKey(uuid.New(), kind)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(g.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(data, kind)),
	}

	if g.config.EnableSSE {
		switch g.config.SSEAlgorithm {
		case "AES256":
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if g.config.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(g.config.SSEKMSKeyID)
			}
		}
	}

	if _, err := g.uploader.Upload(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &simplemedia.UploadResult{
		ExternalID: key,
		URL:        g.objectURL(key),
	}, nil
}

// Delete removes an object. A key the service reports as missing counts
// as deleted.
func (g *Gateway) Delete(ctx context.Context, externalID string, kind simplemedia.AssetKind) error {
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.config.Bucket),
		Key:    aws.String(externalID),
	})
	if err != nil {
		if hasErrorCode(err, "NoSuchKey", "NotFound") {
			return nil
		}
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// objectURL resolves the public address of a key
func (g *Gateway) objectURL(key string) string {
	switch {
	case g.config.PublicBaseURL != "":
		return objectkey.PublicURL(g.config.PublicBaseURL, key)
	case g.config.Endpoint != "" && g.config.UsePathStyle:
		return objectkey.PublicURL(strings.TrimSuffix(g.config.Endpoint, "/")+"/"+g.config.Bucket, key)
	case g.config.Endpoint != "":
		endpoint := g.config.Endpoint
		scheme := "https://"
		if i := strings.Index(endpoint, "://"); i >= 0 {
			scheme, endpoint = endpoint[:i+3], endpoint[i+3:]
		}
		return objectkey.PublicURL(scheme+g.config.Bucket+"."+strings.TrimSuffix(endpoint, "/"), key)
	default:
		return objectkey.PublicURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", g.config.Bucket, g.config.Region), key)
	}
}

// hasErrorCode reports whether err carries one of the given API error codes
func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}

func contentType(data []byte, kind simplemedia.AssetKind) string {
	detected := http.DetectContentType(data)
	if detected != "application/octet-stream" {
		return detected
	}
	if kind == simplemedia.AssetVideo {
		return "video/mp4"
	}
	return detected
}
