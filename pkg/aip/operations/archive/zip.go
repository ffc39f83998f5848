package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/provide-io/aipman/pkg/aip/operations"
)

func init() {
	operations.Register(NewZipOperation())
}

// ZipOperation implements ZIP extraction. ZIP needs random access, so
// non-file streams are buffered in memory.
type ZipOperation struct {
	operations.BaseOperation
}

// NewZipOperation creates a new ZIP operation
func NewZipOperation() *ZipOperation {
	return &ZipOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_ZIP,
			OpName: "ZIP",
		},
	}
}

// Unpack extracts every file of a ZIP archive into destDir.
func (o *ZipOperation) Unpack(input io.Reader, destDir string) error {
	readerAt, size, err := randomAccess(input)
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(readerAt, size)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}

	for _, file := range zr.File {
		target, err := operations.SafeJoin(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() || strings.HasSuffix(file.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", file.Name, err)
			}
			continue
		}
		if !file.Mode().IsRegular() {
			continue
		}

		if err := extractZipFile(file, target); err != nil {
			return fmt.Errorf("extracting %s: %w", file.Name, err)
		}
	}
	return nil
}

func extractZipFile(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = rc.Close()
	}()
	return writeEntry(target, rc, file.Mode().Perm())
}

func randomAccess(input io.Reader) (io.ReaderAt, int64, error) {
	if f, ok := input.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return nil, 0, fmt.Errorf("stat zip: %w", err)
		}
		return f, info.Size(), nil
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return nil, 0, fmt.Errorf("reading zip: %w", err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}
