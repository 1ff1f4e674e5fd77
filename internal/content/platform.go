package content

import "strings"

// Platform names a distribution target.
type Platform string

const (
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformShareChat Platform = "sharechat"
	PlatformInstagram Platform = "instagram"
)

// ParsePlatform normalizes user input into a Platform key. It does not check
// the key against a registry.
func ParsePlatform(value string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(value)))
}

func (p Platform) String() string { return string(p) }
