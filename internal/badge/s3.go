package badge

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the S3 client used by S3Writer
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer stores badges in an S3 bucket
type S3Writer struct {
	client S3API
	bucket string
}

// NewS3Writer creates a writer for the bucket named in cfg
func NewS3Writer(client S3API, cfg Config) *S3Writer {
	return &S3Writer{client: client, bucket: cfg.Bucket}
}

// NewS3Client builds an S3 client, using path-style addressing when a
// custom endpoint is configured.
func NewS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

// Put uploads obj to the bucket
func (w *S3Writer) Put(ctx context.Context, obj *Object) error {
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(w.bucket),
		Key:          aws.String(obj.Key),
		Body:         bytes.NewReader(obj.Body),
		CacheControl: aws.String(obj.CacheControl),
		ContentType:  aws.String(obj.ContentType),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", w.bucket, obj.Key, err)
	}
	return nil
}
