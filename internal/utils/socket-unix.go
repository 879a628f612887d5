//go:build linux || darwin

package utils

import (
	"errors"
	"syscall"
)

const socketBufferSize = 1024 * 1024

func setSocketOptions(fd uintptr) error {
	return errors.Join(
		syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, socketBufferSize),
		syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, socketBufferSize),
	)
}
