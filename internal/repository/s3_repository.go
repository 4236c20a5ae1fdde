package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"fvc-catalog/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// s3API is the subset of the S3 client used by the repository.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Repository implements ProductRepository on a single JSON object in AWS S3.
type s3Repository struct {
	client s3API
	bucket string
	key    string
	logger zerolog.Logger
}

// NewS3Repository creates a new S3-backed product repository.
func NewS3Repository(ctx context.Context, bucket, region, key string, logger zerolog.Logger) (ProductRepository, error) {
	logger = logger.With().Str("repository", "s3").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("key", key).
		Msg("S3 repository initialised")

	return newS3Repository(s3.NewFromConfig(cfg), bucket, key, logger), nil
}

func newS3Repository(client s3API, bucket, key string, logger zerolog.Logger) *s3Repository {
	return &s3Repository{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger.With().Str("bucket", bucket).Str("key", key).Logger(),
	}
}

// Initialize writes the seed products when the object does not exist.
func (r *s3Repository) Initialize(ctx context.Context) error {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err == nil {
		r.logger.Debug().Msg("catalogue object already exists")
		return nil
	}
	if !isS3NotFound(err) {
		r.logger.Error().Err(err).Msg("failed to check catalogue object")
		return fmt.Errorf("%w: head object %s/%s: %w", model.ErrStorageRead, r.bucket, r.key, err)
	}

	seed := SeedProducts()
	if err := r.SaveAll(ctx, seed); err != nil {
		return err
	}

	r.logger.Info().Int("count", len(seed)).Msg("catalogue object created with seed products")
	return nil
}

// LoadAll downloads and parses the catalogue object.
func (r *s3Repository) LoadAll(ctx context.Context) ([]model.Product, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to get object from S3")
		return nil, fmt.Errorf("%w: get object %s/%s: %w", model.ErrStorageRead, r.bucket, r.key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read object body")
		return nil, fmt.Errorf("%w: read object %s/%s: %w", model.ErrStorageRead, r.bucket, r.key, err)
	}

	products, err := decodeProducts(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to parse catalogue object")
		return nil, fmt.Errorf("%w: parse object %s/%s: %w", model.ErrStorageRead, r.bucket, r.key, err)
	}

	return products, nil
}

// SaveAll uploads the collection as a single object. S3 replaces objects
// atomically, so readers see either the old or the new collection.
func (r *s3Repository) SaveAll(ctx context.Context, products []model.Product) error {
	data, err := encodeProducts(products)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorageWrite, err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to put object to S3")
		return fmt.Errorf("%w: put object %s/%s: %w", model.ErrStorageWrite, r.bucket, r.key, err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("catalogue object written")
	return nil
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
