package operations

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// suffixChains maps file suffixes to operation chains. Order matters:
// longer suffixes must be checked before their tails (".tar.gz" before ".gz").
var suffixChains = []struct {
	suffix string
	ops    []uint8
}{
	{".tar.gz", []uint8{OP_TAR, OP_GZIP}},
	{".tgz", []uint8{OP_TAR, OP_GZIP}},
	{".tar.bz2", []uint8{OP_TAR, OP_BZIP2}},
	{".tbz2", []uint8{OP_TAR, OP_BZIP2}},
	{".tar", []uint8{OP_TAR}},
	{".zip", []uint8{OP_ZIP}},
	{".gz", []uint8{OP_GZIP}},
	{".bz2", []uint8{OP_BZIP2}},
}

// Common operation chains
var commonChains = map[string]string{
	"01-10": "tar.gz",  // TAR + GZIP
	"01-13": "tar.bz2", // TAR + BZIP2
	"01":    "tar",
	"02":    "zip",
	"10":    "gzip",
	"13":    "bzip2",
}

// ChainForName returns the operation chain for a file name or URL, dispatched
// by suffix. Query strings and fragments of URLs are ignored.
func ChainForName(name string) ([]uint8, error) {
	base := name
	if u, err := url.Parse(name); err == nil && u.Scheme != "" {
		base = u.Path
	}
	base = strings.ToLower(path.Base(base))

	for _, sc := range suffixChains {
		if strings.HasSuffix(base, sc.suffix) {
			return sc.ops, nil
		}
	}
	return nil, fmt.Errorf("no archive format matches %q", name)
}

// TrimChainSuffix strips the archive suffix recognized by ChainForName.
func TrimChainSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, sc := range suffixChains {
		if strings.HasSuffix(lower, sc.suffix) {
			return name[:len(name)-len(sc.suffix)]
		}
	}
	return name
}

// OperationsToString converts an operation chain to a human-readable string.
func OperationsToString(ops []uint8) string {
	if len(ops) == 0 {
		return "raw"
	}

	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%02x", op)
	}
	if name, ok := commonChains[strings.Join(parts, "-")]; ok {
		return name
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(GetName(op))
	}
	return strings.Join(names, "|")
}

// UnpackFile expands the archive at archivePath into destDir.
//
// The chain lists operations in packing order: an optional container first,
// followed by codecs. Codecs are peeled from the outside in. A chain without
// a container (a bare ".gz") writes the decoded stream to a single file named
// after the archive with its suffix removed.
func UnpackFile(archivePath string, ops []uint8, destDir string) error {
	if len(ops) == 0 {
		return fmt.Errorf("empty operation chain")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating extraction directory: %w", err)
	}

	var stream io.Reader = f
	for i := len(ops) - 1; i >= 1; i-- {
		codec, err := codecFor(ops[i])
		if err != nil {
			return err
		}
		rc, err := codec.NewReader(stream)
		if err != nil {
			return fmt.Errorf("reversing %s: %w", codec.Name(), err)
		}
		defer rc.Close()
		stream = rc
	}

	first, err := Get(ops[0])
	if err != nil {
		return fmt.Errorf("operation 0x%02x: %w", ops[0], err)
	}

	switch op := first.(type) {
	case Unpacker:
		if err := op.Unpack(stream, destDir); err != nil {
			return fmt.Errorf("unpacking %s: %w", op.Name(), err)
		}
		return nil
	case Codec:
		rc, err := op.NewReader(stream)
		if err != nil {
			return fmt.Errorf("reversing %s: %w", op.Name(), err)
		}
		defer rc.Close()

		target := filepath.Join(destDir, TrimChainSuffix(filepath.Base(archivePath)))
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			return fmt.Errorf("decompressing %s: %w", op.Name(), err)
		}
		return out.Close()
	default:
		return fmt.Errorf("operation %s cannot unpack", first.Name())
	}
}

// PackDir serializes srcDir through the chain into output. The first
// operation must be a Packer.
func PackDir(srcDir string, ops []uint8, output io.Writer) error {
	if len(ops) == 0 {
		return fmt.Errorf("empty operation chain")
	}

	first, err := Get(ops[0])
	if err != nil {
		return fmt.Errorf("operation 0x%02x: %w", ops[0], err)
	}
	packer, ok := first.(Packer)
	if !ok {
		return fmt.Errorf("operation %s cannot pack a directory", first.Name())
	}

	// Codecs wrap the output in reverse so the last one touches the file.
	writers := make([]io.WriteCloser, 0, len(ops)-1)
	sink := output
	for i := len(ops) - 1; i >= 1; i-- {
		codec, err := codecFor(ops[i])
		if err != nil {
			return err
		}
		wc, err := codec.NewWriter(sink)
		if err != nil {
			return fmt.Errorf("applying %s: %w", codec.Name(), err)
		}
		writers = append(writers, wc)
		sink = wc
	}

	if err := packer.Pack(srcDir, sink); err != nil {
		return fmt.Errorf("packing %s: %w", packer.Name(), err)
	}

	// Close innermost first so each codec flushes into the next.
	for i := len(writers) - 1; i >= 0; i-- {
		if err := writers[i].Close(); err != nil {
			return fmt.Errorf("closing codec: %w", err)
		}
	}
	return nil
}

func codecFor(id uint8) (Codec, error) {
	op, err := Get(id)
	if err != nil {
		return nil, fmt.Errorf("operation 0x%02x: %w", id, err)
	}
	codec, ok := op.(Codec)
	if !ok {
		return nil, fmt.Errorf("operation %s is not a stream codec", op.Name())
	}
	return codec, nil
}

// SafeJoin joins an archive entry name onto destDir, rejecting entries that
// would land outside of it.
func SafeJoin(destDir, entry string) (string, error) {
	target := filepath.Join(destDir, filepath.Clean(filepath.FromSlash(entry)))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive path: %s", entry)
	}
	return target, nil
}
