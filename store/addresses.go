package store

import "strings"

// Addresses are stored as a comma-separated list; interface addresses
// cannot contain commas.

func joinAddresses(addrs []string) string {
	return strings.Join(addrs, ",")
}

func splitAddresses(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
