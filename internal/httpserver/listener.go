package httpserver

import (
	"net"
	"os"
	"strings"

	"go.uber.org/zap"
)

const unixScheme = "unix://"

// listen opens a TCP listener, or a Unix socket when addr has the unix:// scheme
func listen(addr string, logger *zap.Logger) (net.Listener, error) {
	if !strings.HasPrefix(addr, unixScheme) {
		return net.Listen("tcp", addr)
	}

	socketPath := strings.TrimPrefix(addr, unixScheme)

	// Remove existing socket file
	if err := os.RemoveAll(socketPath); err != nil {
		logger.Warn("Failed to remove existing socket file", zap.String("path", socketPath), zap.Error(err))
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}

	// Readable/writable by owner and group
	if err := os.Chmod(socketPath, 0660); err != nil {
		logger.Warn("Failed to set socket permissions", zap.String("path", socketPath), zap.Error(err))
	}

	return listener, nil
}
