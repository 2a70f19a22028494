// Package privacy provides utilities for handling personally identifiable information (PII)
// in authentication and audit records.
package privacy

import (
	"encoding/hex"
	"fmt"
	"net"

	"golang.org/x/crypto/sha3"
)

// IPHasher derives a stable one-way token from a raw client IP address.
// Authentication events never store the raw address; they store this token so
// failed attempts from the same source can still be correlated for detection.
//
// The pepper is a deployment-wide secret. Without it, an attacker holding the
// event table cannot enumerate the (small) IPv4 space to reverse the hashes.
type IPHasher struct {
	pepper []byte
}

// NewIPHasher creates a hasher with the given pepper. An empty pepper is
// accepted for development but produces unpeppered hashes.
func NewIPHasher(pepper string) *IPHasher {
	return &IPHasher{pepper: []byte(pepper)}
}

// Hash returns the hex-encoded SHA3-256 of pepper||ip.
// An empty address yields an empty hash: absent address, absent token.
func (h *IPHasher) Hash(ip string) string {
	if ip == "" {
		return ""
	}
	d := sha3.New256()
	d.Write(h.pepper)
	d.Write([]byte(ip))
	return hex.EncodeToString(d.Sum(nil))
}

// AnonymizeIP truncates an IP address to remove the host-identifying portion.
// Used for operational log output, where a network prefix is enough context.
//
// For IPv4 addresses, the last octet is zeroed (e.g., "192.168.1.47" -> "192.168.1.0").
// For IPv6 addresses, only the /48 prefix is kept.
//
// Returns "invalid" for unparseable IP addresses, and "unknown" for empty strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	// Check for IPv4 (including IPv4-mapped IPv6)
	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	// IPv6: keep only the /48 prefix (first 6 bytes)
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}
