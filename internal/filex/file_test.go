package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "static", "uploads")

	first, err := EnsureDir(target)
	require.NoError(t, err)
	assert.Equal(t, target, first)

	fi, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	second, err := EnsureDir(target)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileExists(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "uploads")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

	_, err := EnsureDir(p)
	assert.Error(t, err)
}

func TestSafeJoin(t *testing.T) {
	root := t.TempDir()

	p, err := SafeJoin(root, "cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cat.jpg"), p)

	for _, bad := range []string{"", ".", "..", "../etc/passwd", "a/b.jpg", `a\b.jpg`} {
		_, err := SafeJoin(root, bad)
		assert.ErrorIs(t, err, ErrOutsideRoot, bad)
	}
}
