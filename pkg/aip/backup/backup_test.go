package backup

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
)

func newTestArchiver() *Archiver {
	return NewArchiver(hclog.New(&hclog.LoggerOptions{Name: "backup_test", Level: hclog.Trace}))
}

func TestCreateRestoreRoundTrip(t *testing.T) {
	for _, name := range []string{"Applications.bak.tar.gz", "Applications.bak.tar.bz2"} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			appDir := filepath.Join(root, "Applications")
			archive := filepath.Join(root, name)

			require.NoError(t, os.MkdirAll(appDir, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(appDir, "aip_man_pkg_list.json"), []byte(`[{"name":"foo","version":"1.0"}]`), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(appDir, "foo-1.0.AppImage"), []byte("foo"), 0o755))

			a := newTestArchiver()
			require.NoError(t, a.Create(appDir, archive))

			// Mutate the directory after the snapshot.
			require.NoError(t, os.Remove(filepath.Join(appDir, "foo-1.0.AppImage")))
			require.NoError(t, os.WriteFile(filepath.Join(appDir, "bar-9.AppImage"), []byte("bar"), 0o755))

			require.NoError(t, a.Restore(appDir, archive))

			entries, err := os.ReadDir(appDir)
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			assert.Equal(t, []string{"aip_man_pkg_list.json", "foo-1.0.AppImage"}, names)

			data, err := os.ReadFile(filepath.Join(appDir, "foo-1.0.AppImage"))
			require.NoError(t, err)
			assert.Equal(t, "foo", string(data))

			if runtime.GOOS != "windows" {
				info, err := os.Stat(filepath.Join(appDir, "foo-1.0.AppImage"))
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
			}

			// No temporary files linger next to the archive.
			siblings, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Len(t, siblings, 2)
		})
	}
}

func TestRestoreMissingArchive(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "Applications")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "keep.AppImage"), []byte("x"), 0o755))

	err := newTestArchiver().Restore(appDir, filepath.Join(root, "missing.tar.gz"))
	assert.ErrorIs(t, err, aiperrors.ErrBackupMissing)

	// The application directory survives a failed restore.
	_, err = os.Stat(filepath.Join(appDir, "keep.AppImage"))
	assert.NoError(t, err)
}

func TestCreateErrors(t *testing.T) {
	root := t.TempDir()
	a := newTestArchiver()

	err := a.Create(filepath.Join(root, "nope"), filepath.Join(root, "out.tar.gz"))
	assert.Error(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "apps"), 0o755))
	err = a.Create(filepath.Join(root, "apps"), filepath.Join(root, "out.rar"))
	assert.ErrorIs(t, err, aiperrors.ErrUnsupportedArchive)
}
