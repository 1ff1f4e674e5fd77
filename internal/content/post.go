package content

// Post is one prepared publish request: a variant with its caption already
// fitted to the platform and the media URL resolved.
type Post struct {
	Language  string
	Caption   string
	Hashtags  []string
	Recipient string
	MediaURL  string
}
