package blobsvc

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// S3Store keeps blobs in an S3 compatible bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

var _ core.BlobStore = (*S3Store)(nil)

func NewS3Store(ctx context.Context, conf *core.Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.Storage.Region)}
	if conf.Storage.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.Storage.AccessKey, conf.Storage.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading storage config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{client: client, bucket: conf.Storage.Bucket, publicURL: conf.Storage.PublicURL}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, blob core.Blob) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   blob.Content,
	}
	if blob.ContentType != "" {
		input.ContentType = aws.String(blob.ContentType)
	}
	if blob.Size > 0 {
		input.ContentLength = aws.Int64(blob.Size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errors.Wrapf(err, "uploading %s", key)
	}
	return publicURL(s.publicURL, key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "deleting %s", key)
}
