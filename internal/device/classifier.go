package device

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

type DeviceType string

const (
	Desktop DeviceType = "Desktop"
	Mobile  DeviceType = "Mobile"
	Tablet  DeviceType = "Tablet"
	Unknown DeviceType = "Unknown"
)

// Classifier maps request metadata to a device category. Implementations
// must never fail the caller: an unclassifiable request comes back as
// Unknown, not as an error.
type Classifier interface {
	Classify(userAgent, platformHint string) DeviceType
}

// UserAgentClassifier wraps the useragent parser. Constructed explicitly
// and passed in where needed, no package-level singleton.
type UserAgentClassifier struct{}

func NewUserAgentClassifier() *UserAgentClassifier {
	return &UserAgentClassifier{}
}

func (c *UserAgentClassifier) Classify(userAgent, platformHint string) DeviceType {
	if userAgent == "" && platformHint == "" {
		return Unknown
	}

	parsed := ua.Parse(userAgent)
	switch {
	case parsed.Tablet:
		return Tablet
	case parsed.Mobile:
		// iOS traffic routes to the ios destination bundle regardless
		// of form factor
		if parsed.OS == ua.IOS {
			return Tablet
		}
		return Mobile
	case parsed.Desktop:
		return Desktop
	}

	// Parser came up empty, fall back to the substring heuristic.
	return HeuristicClassify(userAgent, platformHint)
}

// HeuristicClassify is the conservative local fallback used when the
// parser is inconclusive or unavailable. It only needs to be right enough
// for destination selection to pick a sensible bundle.
func HeuristicClassify(userAgent, platformHint string) DeviceType {
	if userAgent == "" && platformHint == "" {
		return Unknown
	}

	// The platform hint is a short token like "Android" or "iOS", so a
	// bare substring match is safe there. In a full user-agent string
	// "ios" would also hit words like "bios", so only the device names
	// count.
	hint := strings.ToLower(platformHint)
	switch {
	case strings.Contains(hint, "android"):
		return Mobile
	case strings.Contains(hint, "ios"):
		return Tablet
	}

	s := strings.ToLower(userAgent)
	switch {
	case strings.Contains(s, "android"):
		return Mobile
	case strings.Contains(s, "iphone"), strings.Contains(s, "ipad"):
		return Tablet
	default:
		return Desktop
	}
}
