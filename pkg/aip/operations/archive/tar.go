package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/provide-io/aipman/pkg/aip/operations"
)

func init() {
	// Register TAR operation on package init
	operations.Register(NewTarOperation())
}

// TarOperation implements TAR archive operations
type TarOperation struct {
	operations.BaseOperation
}

// NewTarOperation creates a new TAR operation
func NewTarOperation() *TarOperation {
	return &TarOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_TAR,
			OpName: "TAR",
		},
	}
}

// Unpack extracts the directories and regular files of a TAR stream into
// destDir. Entries escaping destDir are rejected. Links and device entries
// are skipped, so no entry can redirect a later one outside destDir.
func (o *TarOperation) Unpack(input io.Reader, destDir string) error {
	tr := tar.NewReader(input)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		target, err := operations.SafeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return fmt.Errorf("extracting %s: %w", header.Name, err)
			}
		default:
			// Links and special files are never extracted
		}
	}
}

// Pack writes the directories and regular files of srcDir as a TAR stream
// with paths relative to srcDir.
func (o *TarOperation) Pack(srcDir string, output io.Writer) error {
	tw := tar.NewWriter(output)

	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("building tar header for %s: %w", rel, err)
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing tar header: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("writing tar data: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	return nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to write through symlink %s", target)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
