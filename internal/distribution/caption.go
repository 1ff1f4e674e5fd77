package distribution

import (
	"strings"

	"golang.org/x/text/language"

	"sanchaar/internal/content"
	"sanchaar/internal/services"
)

// Truncate limits text to at most limit characters (runes). A non-positive
// limit leaves text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}

// NormalizeLanguage canonicalizes a BCP-47 tag.
func NormalizeLanguage(tag string) (string, error) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "variant", "language is required", nil)
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "variant", "invalid language "+trimmed, err)
	}
	return parsed.String(), nil
}

// preparePost validates variant against spec and fits it to the platform.
func preparePost(spec Spec, variant content.Variant, mediaURL string) (content.Post, error) {
	lang, err := NormalizeLanguage(variant.Language)
	if err != nil {
		return content.Post{}, err
	}
	if spec.RequiresRecipient && !variant.HasRecipient() {
		return content.Post{}, services.Wrap(services.ErrValidation, stageName, "variant",
			"recipient is required for "+string(spec.Platform), nil)
	}
	return content.Post{
		Language:  lang,
		Caption:   Truncate(variant.Text, spec.CaptionLimit),
		Hashtags:  append([]string(nil), variant.Hashtags...),
		Recipient: strings.TrimSpace(variant.Recipient),
		MediaURL:  mediaURL,
	}, nil
}
