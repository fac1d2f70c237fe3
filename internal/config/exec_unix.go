//go:build unix

package config

import "golang.org/x/sys/unix"

// checkExecutable asks the kernel whether the effective user may execute path.
func checkExecutable(path string) error {
	return unix.Access(path, unix.X_OK)
}
