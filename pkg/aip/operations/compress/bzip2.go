package compress

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/provide-io/aipman/pkg/aip/operations"
)

func init() {
	operations.Register(NewBzip2Operation())
}

// Bzip2Operation implements BZIP2 compression
type Bzip2Operation struct {
	operations.BaseOperation
}

// NewBzip2Operation creates a new BZIP2 operation
func NewBzip2Operation() *Bzip2Operation {
	return &Bzip2Operation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_BZIP2,
			OpName: "BZIP2",
		},
	}
}

// NewReader decompresses a BZIP2 stream
func (o *Bzip2Operation) NewReader(input io.Reader) (io.ReadCloser, error) {
	br, err := bzip2.NewReader(input, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	return br, nil
}

// NewWriter compresses into output using BZIP2
func (o *Bzip2Operation) NewWriter(output io.Writer) (io.WriteCloser, error) {
	bw, err := bzip2.NewWriter(output, &bzip2.WriterConfig{Level: 9})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	return bw, nil
}
