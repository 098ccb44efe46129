// Package progress derives percentage and throughput from byte-level
// transfer callbacks.
package progress

import "time"

// Sample is one derived progress reading.
type Sample struct {
	Percent  int     // 0..100, -1 when the total size is unknown
	SpeedBPS float64 // cumulative average bytes/sec, 0 before it is derivable
	Bytes    int64   // bytes transferred so far
}

// Monitor consumes (totalBytes, bytesRemaining) chunk callbacks for one
// session and derives percent and rolling throughput. The first chunk
// establishes the start timestamp; speed is the cumulative average over
// wall-clock time since then, recomputed on every chunk.
//
// Monitor is not safe for concurrent use; a session feeds it from a single
// transfer goroutine.
type Monitor struct {
	start   time.Time
	started bool
	now     func() time.Time
}

// NewMonitor returns a monitor ready for a session's first chunk.
func NewMonitor() *Monitor {
	return &Monitor{now: time.Now}
}

// OnChunk records one transfer callback. totalBytes may be 0 when the stream
// size is unknown; bytesRemaining is totalBytes minus bytes transferred, so
// the transferred count is recoverable in either case. The second return is
// false when no figure is derivable yet (unknown size and no elapsed time).
func (m *Monitor) OnChunk(totalBytes, bytesRemaining int64) (Sample, bool) {
	downloaded := totalBytes - bytesRemaining

	if !m.started {
		m.started = true
		m.start = m.now()
		if totalBytes <= 0 {
			return Sample{}, false
		}
		return Sample{Percent: percent(downloaded, totalBytes), Bytes: downloaded}, true
	}

	sample := Sample{Percent: -1, Bytes: downloaded}
	if totalBytes > 0 {
		sample.Percent = percent(downloaded, totalBytes)
	}

	if elapsed := m.now().Sub(m.start).Seconds(); elapsed > 0 {
		sample.SpeedBPS = float64(downloaded) / elapsed
	}

	if sample.Percent < 0 && sample.SpeedBPS == 0 {
		return Sample{}, false
	}
	return sample, true
}

func percent(downloaded, total int64) int {
	return int(downloaded * 100 / total)
}
