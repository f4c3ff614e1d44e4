package r2client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memAPI is an in-memory ObjectAPI that pages listings two keys at a time.
type memAPI struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemAPI() *memAPI {
	return &memAPI{objects: make(map[string][]byte)}
}

func (m *memAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-` + strconv.Itoa(len(data)) + `"`)}, nil
}

func (m *memAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *memAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(m.objects[k]))),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestNew_RequiresAllFields(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Endpoint: "https://x.r2.cloudflarestorage.com", AccessKeyID: "id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all config fields are required")
}

func TestClient_UploadDownload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewWithAPI(newMemAPI(), "bucket")

	etag, err := c.Upload(ctx, "snapshots/a.db.zst", strings.NewReader("hello"), "application/zstd")
	require.NoError(t, err)
	assert.Equal(t, "etag-5", etag)

	body, err := c.Download(ctx, "snapshots/a.db.zst")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	ok, err := c.Exists(ctx, "snapshots/a.db.zst")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClient_MissingObject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewWithAPI(newMemAPI(), "bucket")

	_, err := c.Download(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := c.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Delete(ctx, "nope"))
}

func TestClient_UploadError(t *testing.T) {
	t.Parallel()
	api := newMemAPI()
	api.putErr = errors.New("boom")
	c := NewWithAPI(api, "bucket")

	_, err := c.Upload(context.Background(), "k", strings.NewReader("x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `upload "k"`)
}

func TestClient_ListPagesAndSorts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewWithAPI(newMemAPI(), "bucket")

	for _, key := range []string{"snapshots/3", "snapshots/1", "other/9", "snapshots/2", "snapshots/4", "snapshots/5"} {
		_, err := c.Upload(ctx, key, strings.NewReader(key), "")
		require.NoError(t, err)
	}

	objects, err := c.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Len(t, objects, 5)
	for i, obj := range objects {
		assert.Equal(t, "snapshots/"+strconv.Itoa(i+1), obj.Key)
		assert.Equal(t, int64(len(obj.Key)), obj.Size)
	}

	require.NoError(t, c.Delete(ctx, "snapshots/1"))
	objects, err = c.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Len(t, objects, 4)
}

func TestCompressDecompress(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "source.db")
	compressedPath := filepath.Join(tmpDir, "source.db.zst")
	restoredPath := filepath.Join(tmpDir, "restored.db")

	testData := strings.Repeat("phông chữ việt hóa ", 2000)
	require.NoError(t, os.WriteFile(srcPath, []byte(testData), 0o644))

	size, err := CompressFile(srcPath, compressedPath)
	require.NoError(t, err)
	assert.Less(t, size, int64(len(testData)))

	f, err := os.Open(compressedPath)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, DecompressStream(f, restoredPath))

	restored, err := os.ReadFile(restoredPath)
	require.NoError(t, err)
	assert.Equal(t, testData, string(restored))
}

func TestCompressFile_Errors(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	_, err := CompressFile(filepath.Join(tmpDir, "missing.db"), filepath.Join(tmpDir, "out.zst"))
	assert.Error(t, err)

	src := filepath.Join(tmpDir, "src.db")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	_, err = CompressFile(src, filepath.Join(tmpDir, "no-such-dir", "out.zst"))
	assert.Error(t, err)
}

func TestDecompressStream_InvalidData(t *testing.T) {
	t.Parallel()

	err := DecompressStream(strings.NewReader("not zstd data"), filepath.Join(t.TempDir(), "out.db"))
	assert.Error(t, err)
}
