//go:build linux

package fsutil

import "syscall"

type statfsResult struct {
	availableBytes uint64
}

func getStatfs(path string, out *statfsResult) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}
	out.availableBytes = uint64(stat.Bavail) * uint64(stat.Bsize) // nolint: unconvert
	return nil
}
