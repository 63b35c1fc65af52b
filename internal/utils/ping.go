package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// PingAddress checks that a TCP listener answers at host:port
func PingAddress(ctx context.Context, address string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingService checks if a service is reachable at the given URL
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Hostname() == "" {
		return fmt.Errorf("invalid URL: %q has no host", serviceURL)
	}

	port := parsedURL.Port()
	if port == "" {
		port = "80"
		if parsedURL.Scheme == "https" {
			port = "443"
		}
	}

	return PingAddress(ctx, net.JoinHostPort(parsedURL.Hostname(), port), timeout)
}

// PingAuthorizer checks if the Authorizer service is reachable
func PingAuthorizer(ctx context.Context, authzURL string) error {
	return PingService(ctx, authzURL, 1500*time.Millisecond)
}
