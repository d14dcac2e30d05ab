package artifacts

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtup/virtup/internal/provisioning"
)

// fakeS3 implements s3API over an in-memory object map.
type fakeS3 struct {
	objects map[string]string
	heads   int
	gets    int
}

func (f *fakeS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.heads++
	if _, ok := f.objects[*params.Bucket+"/"+*params.Key]; !ok {
		return nil, &notFoundError{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gets++
	content, ok := f.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, &notFoundError{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(content))}, nil
}

// notFoundError satisfies smithy.APIError.
type notFoundError struct{}

func (e *notFoundError) Error() string                 { return "NotFound" }
func (e *notFoundError) ErrorCode() string             { return "NotFound" }
func (e *notFoundError) ErrorMessage() string          { return "object not found" }
func (e *notFoundError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func saveAndRestoreS3API(t *testing.T, fake *fakeS3) {
	orig := newS3API
	newS3API = func(_ context.Context) (s3API, error) { return fake, nil }
	t.Cleanup(func() { newS3API = orig })
}

func TestNewS3Source(t *testing.T) {
	t.Run("valid url", func(t *testing.T) {
		u, err := url.Parse("s3://images/rhel9/disk.qcow2")
		require.NoError(t, err)

		source, err := newS3Source(u)
		require.NoError(t, err)
		assert.Equal(t, "images", source.bucket)
		assert.Equal(t, "rhel9/disk.qcow2", source.key)
	})

	t.Run("missing key", func(t *testing.T) {
		u, err := url.Parse("s3://images")
		require.NoError(t, err)

		_, err = newS3Source(u)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected s3://bucket/key")
	})
}

func TestEnsureFetchedFromS3(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches object", func(t *testing.T) {
		fake := &fakeS3{objects: map[string]string{"images/disk.qcow2": "disk-bytes"}}
		saveAndRestoreS3API(t, fake)

		dest := filepath.Join(t.TempDir(), "disk.qcow2")
		result, err := NewFetcher().EnsureFetched(ctx, "s3://images/disk.qcow2", dest)
		require.NoError(t, err)

		assert.True(t, result.Downloaded)
		assert.Equal(t, 1, fake.heads)
		assert.Equal(t, 1, fake.gets)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "disk-bytes", string(data))
	})

	t.Run("missing object is unreachable", func(t *testing.T) {
		fake := &fakeS3{objects: map[string]string{}}
		saveAndRestoreS3API(t, fake)

		dest := filepath.Join(t.TempDir(), "disk.qcow2")
		_, err := NewFetcher().EnsureFetched(ctx, "s3://images/disk.qcow2", dest)
		require.Error(t, err)

		assert.ErrorIs(t, err, provisioning.ErrSourceUnreachable)
		assert.Equal(t, 0, fake.gets)
		assert.NoFileExists(t, dest)
	})
}
