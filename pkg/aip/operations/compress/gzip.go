package compress

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/provide-io/aipman/pkg/aip/operations"
)

func init() {
	// Register GZIP operation on package init
	operations.Register(NewGzipOperation())
}

// GzipOperation implements GZIP compression
type GzipOperation struct {
	operations.BaseOperation
}

// NewGzipOperation creates a new GZIP operation
func NewGzipOperation() *GzipOperation {
	return &GzipOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_GZIP,
			OpName: "GZIP",
		},
	}
}

// NewReader decompresses a GZIP stream
func (o *GzipOperation) NewReader(input io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(input)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	return gr, nil
}

// NewWriter compresses into output using GZIP
func (o *GzipOperation) NewWriter(output io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(output), nil
}
