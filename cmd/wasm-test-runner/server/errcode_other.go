//go:build !unix

package server

import (
	"errors"
	"syscall"
)

func errorCode(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}
	return err.Error()
}
