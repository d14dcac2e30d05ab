package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/virtup/virtup/internal/retry"
)

// Environment variables for object storage sources. The standard AWS
// variables work too; these take precedence and allow pointing at a
// non-AWS endpoint (MinIO, Ceph RGW).
const (
	envS3Endpoint  = "VIRTUP_S3_ENDPOINT"
	envS3Region    = "VIRTUP_S3_REGION"
	envS3AccessKey = "VIRTUP_S3_ACCESS_KEY"
	envS3SecretKey = "VIRTUP_S3_SECRET_KEY"
)

// s3API is the subset of the S3 client used by s3Source.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3API builds the real S3 client. Replaceable in tests.
var newS3API = func(ctx context.Context) (s3API, error) {
	region := os.Getenv(envS3Region)
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	accessKey := os.Getenv(envS3AccessKey)
	secretKey := os.Getenv(envS3SecretKey)
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := os.Getenv(envS3Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// s3Source fetches an artifact from object storage.
type s3Source struct {
	bucket string
	key    string
}

// newS3Source parses an s3://bucket/key URL.
func newS3Source(u *url.URL) (*s3Source, error) {
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 URL %q: expected s3://bucket/key", u.String())
	}

	return &s3Source{bucket: u.Host, key: key}, nil
}

// Probe issues a HeadObject and treats any API error as unreachable.
func (s *s3Source) Probe(ctx context.Context) error {
	client, err := newS3API(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return retry.Fatal(fmt.Errorf("s3://%s/%s: %s", s.bucket, s.key, apiErr.ErrorCode()))
		}
		return err
	}
	return nil
}

// Open starts the object transfer.
func (s *s3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	client, err := newS3API(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, err
	}

	return out.Body, nil
}
