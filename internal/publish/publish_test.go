package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePublisher_CreatesDirAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	p := NewFilePublisher(dir)

	loc, err := p.Publish(context.Background(), Object{Name: "congress-trades.json", Data: []byte(`{"a":1}`)})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "congress-trades.json"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	info, err := os.Stat(loc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFilePublisher_ReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePublisher(dir)
	ctx := context.Background()

	_, err := p.Publish(ctx, Object{Name: "out.json", Data: []byte("first")})
	require.NoError(t, err)
	loc, err := p.Publish(ctx, Object{Name: "out.json", Data: []byte("second")})
	require.NoError(t, err)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFilePublisher_RejectsPaths(t *testing.T) {
	p := NewFilePublisher(t.TempDir())
	for _, name := range []string{"", "../escape.json", "sub/file.json"} {
		_, err := p.Publish(context.Background(), Object{Name: name})
		assert.ErrorIs(t, err, ErrInvalidObject, name)
	}
}

func TestFilePublisher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFilePublisher(t.TempDir()).Publish(ctx, Object{Name: "x.json"})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher_Publish(t *testing.T) {
	fake := &fakeS3{}
	p := newS3Publisher(fake, S3Config{Bucket: "site", Prefix: "data/", CacheControl: "max-age=300"})

	loc, err := p.Publish(context.Background(), Object{
		Name:        "congress-trades.json",
		ContentType: "application/json",
		Data:        []byte(`{}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://site/data/congress-trades.json", loc)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "site", aws.ToString(in.Bucket))
	assert.Equal(t, "data/congress-trades.json", aws.ToString(in.Key))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.Equal(t, "max-age=300", aws.ToString(in.CacheControl))
	assert.Equal(t, "{}", fake.bodies[0])
}

func TestS3Publisher_DefaultContentTypeAndError(t *testing.T) {
	fake := &fakeS3{}
	p := newS3Publisher(fake, S3Config{Bucket: "site"})

	_, err := p.Publish(context.Background(), Object{Name: "report.md"})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", aws.ToString(fake.inputs[0].ContentType))
	assert.Nil(t, fake.inputs[0].CacheControl)

	fake.err = errors.New("access denied")
	_, err = p.Publish(context.Background(), Object{Name: "report.md"})
	assert.ErrorContains(t, err, "access denied")
}

func TestMulti(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeS3{}
	m := Multi{NewFilePublisher(dir), newS3Publisher(fake, S3Config{Bucket: "b"})}

	loc, err := m.Publish(context.Background(), Object{Name: "a.json", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.json"), loc)
	assert.Len(t, fake.inputs, 1)

	fake.err = errors.New("boom")
	_, err = m.Publish(context.Background(), Object{Name: "a.json"})
	assert.Error(t, err)
}
