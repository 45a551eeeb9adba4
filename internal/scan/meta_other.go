//go:build !linux && !darwin && !windows

package scan

import "os"

// Platforms without a portable birth time report the modification time.
func lstatMeta(path string) (Meta, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Meta{}, err
	}
	return Meta{ModTime: info.ModTime(), CreateTime: info.ModTime()}, nil
}
