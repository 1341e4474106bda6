package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for MinIO/R2 and friends
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3Store keeps documents as objects in one bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: opts.Bucket, prefix: prefix}, nil
}

func (s *S3Store) key(ref string) string {
	return s.prefix + ref
}

func (s *S3Store) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if !ValidRef(name) {
		return "", fmt.Errorf("invalid blob name %q: %w", name, apperror.ErrValidation)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrTooLarge) {
			return "", err
		}
		logger.Sugar.Errorf("Failed to upload diary object %s: %v", name, err)
		return "", fmt.Errorf("put object: %w", apperror.ErrStore)
	}
	return name, nil
}

func (s *S3Store) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !ValidRef(ref) {
		return nil, fmt.Errorf("diary file %q: %w", ref, apperror.ErrNotFound)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("diary file %s: %w", ref, apperror.ErrNotFound)
		}
		logger.Sugar.Errorf("Failed to fetch diary object %s: %v", ref, err)
		return nil, fmt.Errorf("get object: %w", apperror.ErrStore)
	}
	return out.Body, nil
}

func (s *S3Store) Remove(ctx context.Context, ref string) error {
	if !ValidRef(ref) {
		return fmt.Errorf("diary file %q: %w", ref, apperror.ErrNotFound)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to delete diary object %s: %v", ref, err)
		return fmt.Errorf("delete object: %w", apperror.ErrStore)
	}
	return nil
}

func isMissing(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *smithyhttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
