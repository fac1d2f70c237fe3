//go:build !unix

package config

import (
	"errors"
	"os"
)

var errNotExecutable = errors.New("no execute permission bits set")

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o111 == 0 {
		return errNotExecutable
	}
	return nil
}
