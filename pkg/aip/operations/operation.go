package operations

import (
	"fmt"
	"io"
)

// Operation identifiers. Containers occupy 0x01-0x0F, codecs 0x10-0x2F.
const (
	// No operation - raw data
	OP_NONE = 0x00

	// Container operations (0x01-0x0F)
	OP_TAR = 0x01 // POSIX TAR archive
	OP_ZIP = 0x02 // ZIP archive

	// Compression operations (0x10-0x2F)
	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
)

// Operation represents a single step of an archive chain
type Operation interface {
	// ID returns the operation identifier (e.g., OP_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string
}

// Codec is a byte-stream transformation such as compression.
type Codec interface {
	Operation

	// NewReader wraps input so reads yield the decoded stream
	NewReader(input io.Reader) (io.ReadCloser, error)

	// NewWriter wraps output so writes are encoded; Close flushes the trailer
	NewWriter(output io.Writer) (io.WriteCloser, error)
}

// Unpacker expands a container stream into a directory tree.
type Unpacker interface {
	Operation
	Unpack(input io.Reader, destDir string) error
}

// Packer serializes a directory tree into a container stream.
type Packer interface {
	Operation
	Pack(srcDir string, output io.Writer) error
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

// Registry maps operation IDs to implementations
var Registry = make(map[uint8]Operation)

// Register registers an operation implementation
func Register(op Operation) {
	Registry[op.ID()] = op
}

// Get retrieves an operation by ID
func Get(id uint8) (Operation, error) {
	op, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown operation: 0x%02x", id)
	}
	return op, nil
}

// GetName returns the name of an operation by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_TAR:
		return "TAR"
	case OP_ZIP:
		return "ZIP"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
