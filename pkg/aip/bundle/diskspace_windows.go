//go:build windows

package bundle

import "golang.org/x/sys/windows"

// volumeSpace reports the space of the volume holding path, honoring the
// caller's disk quota
func volumeSpace(path string) (diskSpace, error) {
	dir, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return diskSpace{}, err
	}
	var space diskSpace
	var free uint64
	if err := windows.GetDiskFreeSpaceEx(dir, &space.available, &space.total, &free); err != nil {
		return diskSpace{}, err
	}
	return space, nil
}
