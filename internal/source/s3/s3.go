package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/telano/nrbload/internal/source"
)

// Config holds settings for the S3 source.
type Config struct {
	Endpoint  string // optional custom endpoint for S3-compatible services
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Extension string // object suffix to match; empty defaults to ".nrb"
}

// Source lists NRB log objects in an S3 (or S3-compatible) bucket.
type Source struct {
	client *s3.Client
	bucket string
	prefix string
	ext    string
}

// New creates an S3 source client.
// Parameters:
//   - ctx: context for AWS config resolution.
//   - cfg: source configuration.
// Returns:
//   - *Source: initialized S3 source.
//   - error: non-nil if the AWS config cannot be built.
func New(ctx context.Context, cfg *Config) (*Source, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			scheme := "http"
			if cfg.UseSSL {
				scheme = "https"
			}
			o.BaseEndpoint = aws.String(fmt.Sprintf("%s://%s", scheme, normalizeEndpoint(cfg.Endpoint)))
			// Path-style addressing for S3-compatible services
			o.UsePathStyle = true
		}
	})

	ext := cfg.Extension
	if ext == "" {
		ext = ".nrb"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return &Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		ext:    ext,
	}, nil
}

// normalizeEndpoint removes the protocol prefix and any path from the
// endpoint.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return strings.TrimSuffix(endpoint, "/")
}

// ID returns a stable identifier for this source.
func (s *Source) ID() string {
	return "s3:" + s.bucket
}

// Files lists matching objects under the configured prefix, sorted by
// object name.
func (s *Source) Files(ctx context.Context) ([]source.File, error) {
	var files []source.File
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, s.ext) {
				continue
			}
			files = append(files, &object{client: s.client, bucket: s.bucket, key: key})
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})
	return files, nil
}

type object struct {
	client *s3.Client
	bucket string
	key    string
}

func (o *object) Name() string {
	return path.Base(o.key)
}

func (o *object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", o.bucket, o.key, err)
	}
	return out.Body, nil
}
