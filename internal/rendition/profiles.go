package rendition

import (
	"fmt"
	"strings"

	"sanchaar/internal/config"
	"sanchaar/internal/services"
)

// Profile is one aspect-ratio rendition target.
type Profile struct {
	Key     string
	Width   int
	Height  int
	Bitrate int
}

// Profiles is a read-only registry of aspect-ratio profiles.
type Profiles struct {
	byKey map[string]Profile
	order []string
}

// NewProfiles builds a registry from configuration.
func NewProfiles(entries []config.Profile) (*Profiles, error) {
	p := &Profiles{byKey: make(map[string]Profile, len(entries))}
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			return nil, fmt.Errorf("profile key is required")
		}
		if _, dup := p.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate profile %q", key)
		}
		if entry.Width <= 0 || entry.Height <= 0 || entry.Bitrate <= 0 {
			return nil, fmt.Errorf("profile %q: width, height and bitrate must be positive", key)
		}
		p.byKey[key] = Profile{Key: key, Width: entry.Width, Height: entry.Height, Bitrate: entry.Bitrate}
		p.order = append(p.order, key)
	}
	return p, nil
}

// DefaultProfiles returns the shipped 9:16, 1:1 and 16:9 profiles.
func DefaultProfiles() *Profiles {
	p, err := NewProfiles(config.DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the profile for key.
func (p *Profiles) Lookup(key string) (Profile, bool) {
	profile, ok := p.byKey[strings.TrimSpace(key)]
	return profile, ok
}

// Keys returns profile keys in configuration order.
func (p *Profiles) Keys() []string {
	return append([]string(nil), p.order...)
}

// Resolve looks up every requested key, dropping duplicates while keeping
// request order. Any unknown key fails the whole request.
func (p *Profiles) Resolve(keys []string) ([]Profile, error) {
	if len(keys) == 0 {
		return nil, services.Wrap(services.ErrValidation, stageName, "resolve profiles", "at least one aspect ratio is required", nil)
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]Profile, 0, len(keys))
	var unknown []string
	for _, key := range keys {
		profile, ok := p.Lookup(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if _, dup := seen[profile.Key]; dup {
			continue
		}
		seen[profile.Key] = struct{}{}
		out = append(out, profile)
	}
	if len(unknown) > 0 {
		return nil, services.Wrap(services.ErrValidation, stageName, "resolve profiles",
			fmt.Sprintf("unknown aspect ratio %s (known: %s)", strings.Join(unknown, ", "), strings.Join(p.order, ", ")), nil)
	}
	return out, nil
}
