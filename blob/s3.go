package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Objects above this size go through the multipart uploader
const multipartLimit = 100 << 20

// S3Store keeps ciphertext in an S3-compatible bucket. Setting
// s3.endpoint makes it talk to R2 or any other compatible service
type S3Store struct {
	c      *s3.Client
	bucket *string
}

func NewS3() (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("s3.access_key_id"),
			viper.GetString("s3.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("s3.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := viper.GetString("s3.endpoint"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if region := viper.GetString("s3.region"); region != "" {
			o.Region = region
		} else {
			o.Region = "auto"
		}
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Store{
		c:      client,
		bucket: bucket,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        s.bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	}

	if len(data) > multipartLimit {
		u := manager.NewUploader(s.c, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		_, err := u.Upload(ctx, input)
		return err
	}

	_, err := s.c.PutObject(ctx, input)
	return err
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotExist
		}

		return nil, err
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	var keys []string

	p := s3.NewListObjectsV2Paginator(s.c, &s3.ListObjectsV2Input{
		Bucket: s.bucket,
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	return keys, nil
}
