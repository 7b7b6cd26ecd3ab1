package cache

// ScopedKeyer prefixes every key of an inner Keyer. Preview servers sharing
// one Redis instance use it to keep their namespaces apart:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "imagepuzzler:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ExportKey(projectHash, format string) string {
	return k.prefix + k.inner.ExportKey(projectHash, format)
}

func (k *ScopedKeyer) FrameKey(itemHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(itemHash, opts)
}

func (k *ScopedKeyer) TimelineKey(planHash, format string) string {
	return k.prefix + k.inner.TimelineKey(planHash, format)
}
