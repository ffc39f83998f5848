package bundle

import (
	"os"
)

// CleanupStale removes scratch directories and partial downloads left in the
// application directory by an interrupted install. Failures only warn. It
// returns the number of entries removed.
func (m *Materializer) CleanupStale() int {
	leftovers, err := m.paths.ListLeftovers()
	if err != nil {
		m.logger.Warn("⚠️ Could not scan for stale files", "dir", m.paths.Root(), "error", err)
		return 0
	}

	removed := 0
	for _, path := range leftovers {
		m.logger.Info("🧹 Cleaning up stale file from an interrupted install", "path", path)
		if err := os.RemoveAll(path); err != nil {
			m.logger.Warn("⚠️ Failed to remove stale file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed
}
