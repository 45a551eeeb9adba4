//go:build darwin

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
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		meta.CreateTime = time.Unix(st.Birthtimespec.Unix())
	}
	return meta, nil
}
