// Package validation checks user-supplied URLs and field values before they
// are used.
//
// URL checks guard against server-side request forgery: the API base URL
// and webhook targets may not point at cloud metadata services, and by
// default not at loopback or private networks either.
//
//   - ValidateBaseURL: strict check for the configured API base URL
//   - ValidateWebhookURL: like ValidateBaseURL but loopback targets are allowed
//
// Private ranges can be allowed with MERCHANT_ALLOW_PRIVATE (any value
// accepted by strconv.ParseBool) or SetAllowPrivate(true). Metadata
// endpoints and link-local addresses stay blocked either way.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// AllowPrivateEnv is the environment variable read at startup.
const AllowPrivateEnv = "MERCHANT_ALLOW_PRIVATE"

var allowPrivate atomic.Bool

// privatePrefixes are reserved ranges that are never valid public targets.
var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),      // RFC1918
	netip.MustParsePrefix("172.16.0.0/12"),   // RFC1918
	netip.MustParsePrefix("192.168.0.0/16"),  // RFC1918
	netip.MustParsePrefix("100.64.0.0/10"),   // RFC6598 shared address space
	netip.MustParsePrefix("192.0.0.0/24"),    // RFC6890
	netip.MustParsePrefix("192.0.2.0/24"),    // RFC5737 documentation
	netip.MustParsePrefix("198.18.0.0/15"),   // RFC2544 benchmarking
	netip.MustParsePrefix("198.51.100.0/24"), // RFC5737 documentation
	netip.MustParsePrefix("203.0.113.0/24"),  // RFC5737 documentation
	netip.MustParsePrefix("240.0.0.0/4"),     // RFC1112 reserved
	netip.MustParsePrefix("fc00::/7"),        // RFC4193 unique local
	netip.MustParsePrefix("100::/64"),        // RFC6666 discard
	netip.MustParsePrefix("2001::/32"),       // RFC4380 Teredo
	netip.MustParsePrefix("2001:10::/28"),    // RFC4843 ORCHID
	netip.MustParsePrefix("2001:db8::/32"),   // RFC3849 documentation
}

var metadataHosts = []string{
	"169.254.169.254",          // AWS, Azure, GCP, DigitalOcean
	"metadata.google.internal", // GCP
	"metadata",
	"instance-data", // AWS
	"fd00:ec2::254", // AWS IPv6
}

var metadataAddrs = []netip.Addr{
	netip.MustParseAddr("169.254.169.254"),
	netip.MustParseAddr("fd00:ec2::254"),
}

// lookupHost resolves names for the rebinding check; tests replace it.
var lookupHost = func(ctx context.Context, host string) ([]netip.Addr, error) {
	return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
}

const lookupTimeout = 5 * time.Second

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(AllowPrivateEnv)))
	allowPrivate.Store(v)
}

// SetAllowPrivate enables or disables private and loopback targets.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and loopback targets are allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// policy selects which address classes a check accepts.
type policy struct {
	loopback bool
	private  bool
}

// ValidateBaseURL checks the API base URL: http or https, a host, no
// metadata endpoint, and no loopback or private address unless private
// targets are allowed. Host names are resolved and every address checked.
func ValidateBaseURL(rawURL string) error {
	p := policy{loopback: allowPrivate.Load(), private: allowPrivate.Load()}
	return validateURL(rawURL, p)
}

// ValidateWebhookURL is ValidateBaseURL for webhook targets, except that
// loopback hosts are always accepted for local development.
func ValidateWebhookURL(rawURL string) error {
	return validateURL(rawURL, policy{loopback: true, private: allowPrivate.Load()})
}

func validateURL(rawURL string, p policy) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if isCloudMetadata(host) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return checkAddr(addr, p)
	}
	if isLocalhost(host) {
		if p.loopback {
			return nil
		}
		return fmt.Errorf("localhost URLs are not allowed")
	}
	return checkHost(host, p)
}

// checkHost resolves host and checks every address. Names that do not
// resolve are accepted so a not-yet-live host can be configured.
func checkHost(host string, p policy) error {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	addrs, err := lookupHost(ctx, host)
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if err := checkAddr(addr, p); err != nil {
			return fmt.Errorf("domain %q resolves to forbidden IP %s: %w", host, addr, err)
		}
	}
	return nil
}

func checkAddr(addr netip.Addr, p policy) error {
	addr = addr.Unmap()
	if slices.Contains(metadataAddrs, addr) {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if addr.IsUnspecified() {
		if p.loopback {
			return nil
		}
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if addr.IsLoopback() {
		if p.loopback {
			return nil
		}
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	if addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if !p.private && (addr.IsMulticast() || isPrivateAddr(addr)) {
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

func isPrivateAddr(addr netip.Addr) bool {
	for _, prefix := range privatePrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func isLocalhost(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" || strings.HasSuffix(host, ".localhost")
}

func isCloudMetadata(host string) bool {
	host = strings.ToLower(host)
	if slices.Contains(metadataHosts, host) {
		return true
	}
	return strings.HasSuffix(host, ".metadata.google.internal")
}
