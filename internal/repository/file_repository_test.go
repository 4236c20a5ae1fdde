package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fvc-catalog/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileRepository(t *testing.T) (ProductRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "products.json")
	return NewFileRepository(path, zerolog.Nop()), path
}

func TestFileRepository_InitializeSeedsMissingFile(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))

	_, err := os.Stat(path)
	require.NoError(t, err, "data file should be created")

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "ไฟฟ้า", products[0].Category)
	assert.Equal(t, "เครื่องกล", products[1].Category)
	assert.Equal(t, "โยธา", products[2].Category)

	seen := map[string]bool{}
	for _, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.False(t, seen[p.ID], "seed ids must be unique")
		seen[p.ID] = true
	}
}

func TestFileRepository_InitializeIsIdempotent(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, repo.Initialize(ctx))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second, "existing file must be left untouched")
}

func TestFileRepository_InitializeKeepsExistingEmptyCollection(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	require.NoError(t, repo.Initialize(ctx))

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFileRepository_LoadAllErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "Missing file", content: nil},
		{name: "Invalid JSON", content: model.StringPtr("{not json")},
		{name: "Wrong document shape", content: model.StringPtr(`{"id":"1"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "products.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			repo := NewFileRepository(path, zerolog.Nop())

			products, err := repo.LoadAll(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrStorageRead))
			assert.Nil(t, products)
		})
	}
}

func TestFileRepository_LoadAllNullDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))
	repo := NewFileRepository(path, zerolog.Nop())

	products, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestFileRepository_RoundTrip(t *testing.T) {
	repo, _ := newTestFileRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	products := []model.Product{
		{ID: "b", Category: "โยธา", Name: "Second <b>", Brand: "A&B", Model: "", Price: 1.5},
		{ID: "a", Category: "ไฟฟ้า", Name: "First", Brand: "", Model: "M1", Price: 0},
		{ID: "c", Category: "เครื่องกล", Name: "Third", Brand: "C", Model: "M3", Price: 99999},
	}
	require.NoError(t, repo.SaveAll(ctx, products))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, loaded, "order and content must survive a round trip")

	require.NoError(t, repo.SaveAll(ctx, loaded))
	reloaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, loaded, reloaded)
}

func TestFileRepository_SaveAllWritesReadableJSON(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	require.NoError(t, repo.SaveAll(ctx, []model.Product{
		{ID: "1", Category: "ไฟฟ้า", Name: "สวิตช์ & ปลั๊ก", Price: 150},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "\n  {\n")
	assert.Contains(t, content, `"name": "สวิตช์ & ปลั๊ก"`)
	assert.Contains(t, content, `"brand": ""`)
	assert.Contains(t, content, `"price": 150`)
}

func TestFileRepository_SaveAllNilWritesEmptyArray(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	require.NoError(t, repo.SaveAll(ctx, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFileRepository_SaveAllLeavesNoTemporaryFiles(t *testing.T) {
	repo, path := newTestFileRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.SaveAll(ctx, SeedProducts()))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "products.json", entries[0].Name())
}

func TestFileRepository_SaveAllFailure(t *testing.T) {
	// The parent directory does not exist, so the temporary file cannot be created.
	path := filepath.Join(t.TempDir(), "missing", "products.json")
	repo := NewFileRepository(path, zerolog.Nop())

	err := repo.SaveAll(context.Background(), SeedProducts())

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStorageWrite))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSeedProducts_FreshIDs(t *testing.T) {
	first := SeedProducts()
	second := SeedProducts()

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for i := range first {
		assert.NotEqual(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Name, second[i].Name)
	}
	assert.Equal(t, "คอนกรีตผสมเสร็จ 240 KSC", first[2].Name)
	assert.Equal(t, 1900.0, first[2].Price)
}
