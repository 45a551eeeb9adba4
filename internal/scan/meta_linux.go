//go:build linux

package scan

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// lstatMeta reads the timestamps of path without following symlinks.
// Creation time is the statx birth time when the filesystem records one,
// otherwise the inode change time.
func lstatMeta(path string) (Meta, error) {
	var stx unix.Statx_t
	mask := unix.STATX_MTIME | unix.STATX_CTIME | unix.STATX_BTIME
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, mask, &stx)
	if errors.Is(err, unix.ENOSYS) {
		return lstatFallback(path)
	}
	if err != nil {
		return Meta{}, &fs.PathError{Op: "statx", Path: path, Err: err}
	}

	meta := Meta{ModTime: statxTime(stx.Mtime)}
	if stx.Mask&unix.STATX_BTIME != 0 {
		meta.CreateTime = statxTime(stx.Btime)
	} else {
		meta.CreateTime = statxTime(stx.Ctime)
	}
	return meta, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}

// lstatFallback serves kernels older than 4.11.
func lstatFallback(path string) (Meta, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Meta{}, err
	}
	meta := Meta{ModTime: info.ModTime(), CreateTime: info.ModTime()}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		meta.CreateTime = time.Unix(st.Ctim.Unix())
	}
	return meta, nil
}
