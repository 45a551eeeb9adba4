//go:build windows

package scan

import (
	"os"
	"syscall"
	"time"
)

func lstatMeta(path string) (Meta, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Meta{}, err
	}
	meta := Meta{ModTime: info.ModTime(), CreateTime: info.ModTime()}
	if d, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		meta.CreateTime = time.Unix(0, d.CreationTime.Nanoseconds())
	}
	return meta, nil
}
