package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr string
	}{
		{"common.json", ""},
		{"reports/linux/common.txt", ""},
		{"a..b.txt", ""},
		{"", "empty"},
		{"/abs/common.json", "absolute paths not allowed"},
		{"C:/common.json", "absolute paths not allowed"},
		{"c:common.json", "absolute paths not allowed"},
		{"../common.json", "path traversal not allowed"},
		{"out/../common.json", "path traversal not allowed"},
		{"..", "path traversal not allowed"},
		{"./common.json", "not clean"},
		{"out//common.json", "not clean"},
		{"out/", "not clean"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()

	content := []byte("hello")
	require.NoError(t, s.WriteFile(ctx, "a/b.txt", content))
	content[0] = 'j'
	assert.Equal(t, "hello", string(s.Get("a/b.txt")), "sink must copy on write")

	got := s.Get("a/b.txt")
	got[0] = 'y'
	assert.Equal(t, "hello", string(s.Get("a/b.txt")), "sink must copy on read")

	assert.Nil(t, s.Get("missing"))
	assert.Error(t, s.WriteFile(ctx, "../x", nil))

	files := s.Files()
	assert.Len(t, files, 1)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.WriteFile(cancelled, "c.txt", nil), context.Canceled)
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.WriteFile(context.Background(), fmt.Sprintf("f%d.txt", i), []byte("x")))
		}()
	}
	wg.Wait()
	assert.Len(t, s.Files(), 50)
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root)

	require.NoError(t, s.WriteFile(ctx, "out/common.json", []byte("{}")))
	data, err := os.ReadFile(filepath.Join(root, "out", "common.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	info, err := os.Stat(filepath.Join(root, "out", "common.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	require.NoError(t, s.WriteFile(ctx, "out/common.json", []byte("[]")), "overwrite")
	data, _ = os.ReadFile(filepath.Join(root, "out", "common.json"))
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "out"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".commonizer-"), "temp file left behind: %s", e.Name())
	}
}

func TestFilesystemSink_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	s := &FilesystemSink{Root: t.TempDir()}

	require.NoError(t, s.WriteFile(ctx, "common.txt", []byte("one")))
	err := s.WriteFile(ctx, "common.txt", []byte("two"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, _ := os.ReadFile(filepath.Join(s.Root, "common.txt"))
	assert.Equal(t, "one", string(data))
}

func TestFilesystemSink_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewFilesystemSink(t.TempDir())

	assert.Error(t, s.WriteFile(ctx, "/etc/passwd", nil))
	assert.Error(t, s.WriteFile(ctx, "../escape.txt", nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.WriteFile(cancelled, "x.txt", nil), context.Canceled)
}

func TestWriteFiles(t *testing.T) {
	s := NewMemorySink()
	err := WriteFiles(context.Background(), s, []File{
		{Path: "common.json", Content: []byte("{}")},
		{Path: "common.txt", Content: []byte("ok")},
	})
	require.NoError(t, err)
	assert.Len(t, s.Files(), 2)

	err = WriteFiles(context.Background(), s, []File{{Path: "../bad"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write ../bad")
}
