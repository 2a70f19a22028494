package recorder

import (
	"strings"

	"github.com/mssola/useragent"
)

// describeDevice extracts a human-readable device description from a
// User-Agent string, e.g. "Chrome on macOS" or "Safari on iPhone".
// The raw User-Agent is still stored alongside; this is for dashboards.
func describeDevice(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		platform := ua.Platform()
		if platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
