package netutil

import (
	"errors"
	"fmt"
	"net"
)

// SelectBindAddr returns the first address the relay can listen on. The
// preferred address wins when free; when it is busy and autoFallback is set,
// the candidates are probed in order.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	probe := make([]string, 0, len(candidates)+1)
	if preferred != "" {
		probe = append(probe, preferred)
	}
	if autoFallback || preferred == "" {
		probe = append(probe, candidates...)
	}

	for i, addr := range probe {
		ok, err := IsAddrAvailable(addr)
		if err != nil {
			return "", err
		}
		if ok {
			return addr, nil
		}
		if i == 0 && preferred != "" && !autoFallback {
			return "", fmt.Errorf("preferred bind address in use: %s", preferred)
		}
	}

	return "", errors.New("no available relay bind addresses")
}

// IsAddrAvailable returns true when an address can be listened on.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}
