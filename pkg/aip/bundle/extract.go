package bundle

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
)

// DiskSpaceMultiplier is how many times the archive size must be free
// before extraction starts
const DiskSpaceMultiplier = 2

// findArtifact walks dir in lexical order and returns the first regular file
// whose base name matches the artifact pattern.
func (m *Materializer) findArtifact(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m.pattern.Match(d.Name()) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", aiperrors.ErrExtractionFailed, err)
	}
	if found == "" {
		return "", aiperrors.ErrArtifactNotFound
	}
	return found, nil
}

// diskSpace is the free and total size of a volume in bytes
type diskSpace struct {
	available uint64
	total     uint64
}

func mib(n uint64) string {
	return fmt.Sprintf("%.2f", float64(n)/(1<<20))
}

// ensureRoom fails when space cannot hold needed bytes
func ensureRoom(space diskSpace, needed uint64) error {
	if space.available < needed {
		return fmt.Errorf("%w: need %s MiB, have %s MiB of %s MiB", aiperrors.ErrInsufficientSpace,
			mib(needed), mib(space.available), mib(space.total))
	}
	return nil
}

// checkDiskSpace verifies the app directory's volume can hold
// DiskSpaceMultiplier times the archive. A volume that cannot be queried
// only produces a warning.
func (m *Materializer) checkDiskSpace(archive string) error {
	info, err := os.Stat(archive)
	if err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrExtractionFailed, err)
	}
	needed := uint64(info.Size()) * DiskSpaceMultiplier

	space, err := volumeSpace(m.paths.Root())
	if err != nil {
		m.logger.Warn("⚠️ Could not check disk space", "error", err)
		return nil
	}
	m.logger.Debug("💾 Disk space check", "needed_mib", mib(needed), "available_mib", mib(space.available), "total_mib", mib(space.total))

	return ensureRoom(space, needed)
}
