//go:build windows

package utils

import (
	"errors"
	"syscall"
)

const socketBufferSize = 1024 * 1024

func setSocketOptions(fd uintptr) error {
	handle := syscall.Handle(fd)
	return errors.Join(
		syscall.SetsockoptInt(handle, syscall.SOL_SOCKET, syscall.SO_RCVBUF, socketBufferSize),
		syscall.SetsockoptInt(handle, syscall.SOL_SOCKET, syscall.SO_SNDBUF, socketBufferSize),
	)
}
