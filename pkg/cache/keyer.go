package cache

import "strings"

// Keyer builds cache keys for each artifact kind.
type Keyer interface {
	// ExportKey keys a whole-project export (html quiz or zip archive).
	ExportKey(projectHash, format string) string

	// FrameKey keys preview output for one item.
	FrameKey(itemHash string, opts FrameKeyOpts) string

	// TimelineKey keys a rendered reveal timeline.
	TimelineKey(planHash, format string) string
}

// FrameKeyOpts are the render settings that change preview output.
type FrameKeyOpts struct {
	Format     string  `json:"format"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FPS        int     `json:"fps"`
	AtNanos    int64   `json:"at"`
	HoldMillis int64   `json:"hold,omitempty"`
	NextLabel  string  `json:"next,omitempty"`
	Progress   string  `json:"progress,omitempty"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ExportKey returns "export:<format>:<sha256>".
func (DefaultKeyer) ExportKey(projectHash, format string) string {
	return hashKey("export:"+format, projectHash)
}

// FrameKey includes every option in the hash.
func (DefaultKeyer) FrameKey(itemHash string, opts FrameKeyOpts) string {
	return hashKey("frame:"+opts.Format, itemHash, opts)
}

// TimelineKey returns "timeline:<format>:<sha256>".
func (DefaultKeyer) TimelineKey(planHash, format string) string {
	return hashKey("timeline:"+format, planHash)
}

// KeyType returns the artifact kind of a key built by DefaultKeyer, for
// hit/miss accounting.
func KeyType(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}
