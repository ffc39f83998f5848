package operations_test

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/aipman/pkg/aip/operations"
	_ "github.com/provide-io/aipman/pkg/aip/operations/archive"
	_ "github.com/provide-io/aipman/pkg/aip/operations/compress"
)

// TestChainForName tests suffix dispatch for archive names and URLs
func TestChainForName(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "chain_test",
		Level: hclog.Trace,
	})

	testCases := []struct {
		name     string
		input    string
		expected []uint8
	}{
		{"tar.gz file", "bundle.tar.gz", []uint8{operations.OP_TAR, operations.OP_GZIP}},
		{"tgz upper case", "BUNDLE.TGZ", []uint8{operations.OP_TAR, operations.OP_GZIP}},
		{"tar.bz2 file", "bundle.tar.bz2", []uint8{operations.OP_TAR, operations.OP_BZIP2}},
		{"plain tar", "bundle.tar", []uint8{operations.OP_TAR}},
		{"zip url with query", "https://example.com/dl/app.zip?raw=true", []uint8{operations.OP_ZIP}},
		{"bare gzip", "file:///tmp/app.AppImage.gz", []uint8{operations.OP_GZIP}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ops, err := operations.ChainForName(tc.input)
			require.NoError(t, err)
			logger.Debug("📦 Resolved chain", "input", tc.input, "chain", operations.OperationsToString(ops))
			assert.Equal(t, tc.expected, ops)
		})
	}

	_, err := operations.ChainForName("https://example.com/app.AppImage")
	assert.Error(t, err)
}

func TestOperationsToString(t *testing.T) {
	assert.Equal(t, "raw", operations.OperationsToString(nil))
	assert.Equal(t, "tar.gz", operations.OperationsToString([]uint8{operations.OP_TAR, operations.OP_GZIP}))
	assert.Equal(t, "zip", operations.OperationsToString([]uint8{operations.OP_ZIP}))
	assert.Equal(t, "zip|gzip", operations.OperationsToString([]uint8{operations.OP_ZIP, operations.OP_GZIP}))
}

func TestTrimChainSuffix(t *testing.T) {
	assert.Equal(t, "app.AppImage", operations.TrimChainSuffix("app.AppImage.gz"))
	assert.Equal(t, "bundle", operations.TrimChainSuffix("bundle.tar.bz2"))
	assert.Equal(t, "plain", operations.TrimChainSuffix("plain"))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, suffix := range []string{".tar", ".tar.gz", ".tar.bz2"} {
		t.Run(suffix, func(t *testing.T) {
			src := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(src, "nested", "dir"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "dir", "app.AppImage"), []byte("#!/bin/sh\n"), 0o755))

			ops, err := operations.ChainForName("backup" + suffix)
			require.NoError(t, err)

			archivePath := filepath.Join(t.TempDir(), "backup"+suffix)
			out, err := os.Create(archivePath)
			require.NoError(t, err)
			require.NoError(t, operations.PackDir(src, ops, out))
			require.NoError(t, out.Close())

			dest := filepath.Join(t.TempDir(), "restored")
			require.NoError(t, operations.UnpackFile(archivePath, ops, dest))

			data, err := os.ReadFile(filepath.Join(dest, "top.txt"))
			require.NoError(t, err)
			assert.Equal(t, "top", string(data))

			info, err := os.Stat(filepath.Join(dest, "nested", "dir", "app.AppImage"))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
		})
	}
}

func TestUnpackZip(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("app/Tool.AppImage")
	require.NoError(t, err)
	_, err = w.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	require.NoError(t, operations.UnpackFile(archivePath, []uint8{operations.OP_ZIP}, dest))

	data, err := os.ReadFile(filepath.Join(dest, "app", "Tool.AppImage"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestUnpackBareGzip(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "Tool.AppImage.gz")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte("elf"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	dest := t.TempDir()
	require.NoError(t, operations.UnpackFile(archivePath, []uint8{operations.OP_GZIP}, dest))

	data, err := os.ReadFile(filepath.Join(dest, "Tool.AppImage"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
}

func TestUnpackRejectsTraversal(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "evil.tar")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	tw := tar.NewWriter(f)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../escape.txt", Mode: 0o644, Size: 1, Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, f.Close())

	dest := filepath.Join(t.TempDir(), "out")
	err = operations.UnpackFile(archivePath, []uint8{operations.OP_TAR}, dest)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnpackSkipsChainedSymlinks(t *testing.T) {
	root := t.TempDir()
	archivePath := filepath.Join(root, "links.tar")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	tw := tar.NewWriter(f)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "l1", Linkname: ".", Typeflag: tar.TypeSymlink}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "l1/l2", Linkname: "..", Typeflag: tar.TypeSymlink}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "l1/l2/evil", Mode: 0o644, Size: 4, Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte("evil"))
	require.NoError(t, err)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "hard", Linkname: "l1/l2/evil", Typeflag: tar.TypeLink}))
	require.NoError(t, tw.Close())
	require.NoError(t, f.Close())

	dest := filepath.Join(root, "scratch")
	require.NoError(t, operations.UnpackFile(archivePath, []uint8{operations.OP_TAR}, dest))

	_, err = os.Stat(filepath.Join(root, "evil"))
	assert.True(t, os.IsNotExist(err), "entry escaped the destination")

	info, err := os.Lstat(filepath.Join(dest, "l1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = os.Lstat(filepath.Join(dest, "l1", "l2", "evil"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	_, err = os.Lstat(filepath.Join(dest, "hard"))
	assert.True(t, os.IsNotExist(err))
}

func TestUnpackRefusesExistingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}

	root := t.TempDir()
	outside := filepath.Join(root, "aip_man_pkg_list.json")
	require.NoError(t, os.WriteFile(outside, []byte("[]\n"), 0o644))

	dest := filepath.Join(root, "scratch")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(dest, "app.AppImage")))

	archivePath := filepath.Join(root, "app.tar")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	tw := tar.NewWriter(f)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "app.AppImage", Mode: 0o755, Size: 4, Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte("evil"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, f.Close())

	err = operations.UnpackFile(archivePath, []uint8{operations.OP_TAR}, dest)
	require.Error(t, err)

	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "root")

	got, err := operations.SafeJoin(dest, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a", "b.txt"), got)

	_, err = operations.SafeJoin(dest, "../../etc/passwd")
	assert.Error(t, err)

	_, err = operations.SafeJoin(dest, "a/../../x")
	assert.Error(t, err)
}

func TestRegistryLookup(t *testing.T) {
	for _, id := range []uint8{operations.OP_TAR, operations.OP_ZIP, operations.OP_GZIP, operations.OP_BZIP2} {
		op, err := operations.Get(id)
		require.NoError(t, err)
		assert.Equal(t, operations.GetName(id), op.Name())
		assert.Equal(t, id, op.ID())
	}

	_, err := operations.Get(0x7f)
	assert.Error(t, err)
}
