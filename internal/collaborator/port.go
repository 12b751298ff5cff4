package collaborator

import (
	"fmt"
	"net"
)

// loopbackHost is the only interface the collaborator listens on.
const loopbackHost = "127.0.0.1"

// FreePort asks the kernel for an unused loopback port by binding port 0
// and releasing it. Another process could claim the port before the
// collaborator binds it; the health deadline covers that case.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(loopbackHost, "0"))
	if err != nil {
		return 0, fmt.Errorf("allocate port: %w", err)
	}
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("allocate port: unexpected address %v", l.Addr())
	}
	return addr.Port, nil
}

// BaseURL is the collaborator address for port.
func BaseURL(port int) string {
	return fmt.Sprintf("http://%s:%d", loopbackHost, port)
}
