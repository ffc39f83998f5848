//go:build !windows

package bundle

import "golang.org/x/sys/unix"

// volumeSpace reports the space of the filesystem holding path, counting
// only blocks available to unprivileged users
func volumeSpace(path string) (diskSpace, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return diskSpace{}, err
	}
	block := uint64(st.Bsize)
	return diskSpace{
		available: uint64(st.Bavail) * block,
		total:     uint64(st.Blocks) * block,
	}, nil
}
