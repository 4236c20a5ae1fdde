package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"fvc-catalog/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory implementation of s3API for testing.
type fakeS3 struct {
	objects    map[string][]byte
	puts       int
	headErr    error
	getErr     error
	putErr     error
	lastPutKey string
	lastType   string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.ToString(params.Key)]; !ok {
		return nil, &types.NotFound{Message: aws.String("not found")}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts++
	f.lastPutKey = aws.ToString(params.Key)
	f.lastType = aws.ToString(params.ContentType)
	f.objects[f.lastPutKey] = data
	return &s3.PutObjectOutput{}, nil
}

const testKey = "catalog/products.json"

func TestS3Repository_InitializeSeedsMissingObject(t *testing.T) {
	client := newFakeS3()
	repo := newS3Repository(client, "bucket", testKey, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	assert.Equal(t, 1, client.puts)
	assert.Equal(t, testKey, client.lastPutKey)
	assert.Equal(t, "application/json", client.lastType)

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestS3Repository_InitializeIsIdempotent(t *testing.T) {
	client := newFakeS3()
	client.objects[testKey] = []byte("[]")
	repo := newS3Repository(client, "bucket", testKey, zerolog.Nop())

	require.NoError(t, repo.Initialize(context.Background()))

	assert.Equal(t, 0, client.puts, "existing object must be left untouched")
	assert.Equal(t, []byte("[]"), client.objects[testKey])
}

func TestS3Repository_InitializeHeadFailure(t *testing.T) {
	client := newFakeS3()
	client.headErr = errors.New("access denied")
	repo := newS3Repository(client, "bucket", testKey, zerolog.Nop())

	err := repo.Initialize(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStorageRead))
	assert.Equal(t, 0, client.puts)
}

func TestS3Repository_RoundTrip(t *testing.T) {
	client := newFakeS3()
	repo := newS3Repository(client, "bucket", testKey, zerolog.Nop())
	ctx := context.Background()

	products := []model.Product{
		{ID: "2", Category: "โยธา", Name: "B", Price: 2},
		{ID: "1", Category: "ไฟฟ้า", Name: "A", Brand: "X", Model: "Y", Price: 1},
	}
	require.NoError(t, repo.SaveAll(ctx, products))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, loaded)
}

func TestS3Repository_LoadAllErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeS3)
	}{
		{
			name:  "Missing object",
			setup: func(f *fakeS3) {},
		},
		{
			name:  "Get failure",
			setup: func(f *fakeS3) { f.getErr = errors.New("connection reset") },
		},
		{
			name:  "Invalid content",
			setup: func(f *fakeS3) { f.objects[testKey] = []byte("not json") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeS3()
			tt.setup(client)
			repo := newS3Repository(client, "bucket", testKey, zerolog.Nop())

			products, err := repo.LoadAll(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrStorageRead))
			assert.Nil(t, products)
		})
	}
}

func TestS3Repository_SaveAllFailure(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("slow down")
	repo := newS3Repository(client, "bucket", testKey, zerolog.Nop())

	err := repo.SaveAll(context.Background(), SeedProducts())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStorageWrite))
	assert.Empty(t, client.objects)
}
