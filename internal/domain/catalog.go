package domain

// StreamCatalog owns the ordered set of stream descriptors resolved for one
// media item. Read-only after construction; descriptor order is the order
// the resolver produced them.
type StreamCatalog struct {
	streams []*StreamDescriptor
}

// NewStreamCatalog wraps the resolver-ordered descriptor list.
func NewStreamCatalog(streams []*StreamDescriptor) *StreamCatalog {
	return &StreamCatalog{streams: streams}
}

// Len returns the total number of descriptors.
func (c *StreamCatalog) Len() int {
	return len(c.streams)
}

// All returns every descriptor in catalog order.
func (c *StreamCatalog) All() []*StreamDescriptor {
	out := make([]*StreamDescriptor, len(c.streams))
	copy(out, c.streams)
	return out
}

// FilterByKind returns descriptors of the given kind, preserving catalog order.
func (c *StreamCatalog) FilterByKind(kind StreamKind) []*StreamDescriptor {
	var out []*StreamDescriptor
	for _, s := range c.streams {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// BestAudio returns the audio-only descriptor with the highest bitrate, or
// nil when the catalog has no audio streams. Ties go to the earlier entry.
func (c *StreamCatalog) BestAudio() *StreamDescriptor {
	var best *StreamDescriptor
	for _, s := range c.streams {
		if s.Kind != StreamAudioOnly {
			continue
		}
		if best == nil || s.Bitrate > best.Bitrate {
			best = s
		}
	}
	return best
}

// ProgressiveAt returns the progressive descriptor with exactly the given
// resolution label, or nil. There is no fallback to a nearby resolution.
func (c *StreamCatalog) ProgressiveAt(resolution string) *StreamDescriptor {
	for _, s := range c.streams {
		if s.Kind == StreamProgressive && s.Resolution == resolution {
			return s
		}
	}
	return nil
}

// AvailableProgressiveResolutions returns the subset of the fixed resolution
// set present in the catalog, in descending numeric order.
func (c *StreamCatalog) AvailableProgressiveResolutions() []string {
	var out []string
	for _, res := range ProgressiveResolutions {
		if c.ProgressiveAt(res) != nil {
			out = append(out, res)
		}
	}
	return out
}
