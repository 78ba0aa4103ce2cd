package utils

import (
	"fmt"
	"net"
	"time"
)

// CheckPortListening reports whether something accepts connections on the
// given local port. Used by the status command, not by port allocation.
func CheckPortListening(port int) bool {
	timeout := time.Second
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", fmt.Sprintf("%d", port)), timeout)
	if err != nil {
		return false
	}
	if conn != nil {
		conn.Close()
		return true
	}
	return false
}
