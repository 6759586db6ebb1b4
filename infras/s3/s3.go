package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"otabridge/config"
	"otabridge/infras/otel"
	"otabridge/shared/constant"
)

const (
	otelAttrObjectKey = "object_key"
	otelAttrBucket    = "bucket"

	region = "auto"
)

var ErrDisabled = errors.New("object storage is disabled")

// S3 stores opaque blobs such as archived OTA exchanges.
type S3 interface {
	Put(ctx context.Context, directory, name, contentType string, data []byte) (key string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Enabled() bool
}

type s3Impl struct {
	client *s3.Client
	bucket string
	otel   otel.Otel
}

// New returns a no-op store when S3 is disabled in config.
func New(cfg *config.Config, otel otel.Otel) S3 {
	if !cfg.External.S3.Enable {
		log.Info().Msg("S3 archive disabled")

		return &disabled{}
	}

	provider := credentials.NewStaticCredentialsProvider(
		cfg.External.S3.AccessKeyID,
		cfg.External.S3.SecretAccessKey,
		"",
	)

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(provider),
		awsConfig.WithRegion(region),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to load AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.External.S3.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.External.S3.APIEndpoint)
		}

		o.UsePathStyle = true
	})

	log.Info().Str("bucket", cfg.External.S3.BucketName).Msg("S3 archive initialized")

	return &s3Impl{
		client: client,
		bucket: cfg.External.S3.BucketName,
		otel:   otel,
	}
}

func (svc *s3Impl) Enabled() bool {
	return true
}

func (svc *s3Impl) Put(ctx context.Context, directory, name, contentType string, data []byte) (key string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Put")
	defer scope.EndWith(&err)

	key = path.Join(directory, name)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: key,
		otelAttrBucket:    svc.bucket,
	})

	reader := bytes.NewReader(data)

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(svc.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(reader.Size()),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload object to S3")

		return constant.Empty, fmt.Errorf("failed to upload object to S3: %w", err)
	}

	return key, nil
}

func (svc *s3Impl) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Get")
	defer scope.EndWith(&err)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: key,
		otelAttrBucket:    svc.bucket,
	})

	out, err := svc.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(svc.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to download object from S3")

		return nil, fmt.Errorf("failed to download object from S3: %w", err)
	}
	defer out.Body.Close()

	data, err = io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return data, nil
}

type disabled struct{}

func (d *disabled) Enabled() bool {
	return false
}

func (d *disabled) Put(_ context.Context, _, _, _ string, _ []byte) (string, error) {
	return constant.Empty, ErrDisabled
}

func (d *disabled) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrDisabled
}
