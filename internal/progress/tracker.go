// Package progress tracks per-application download progress across
// concurrent workers and emits human-readable log lines.
package progress

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Tracker is safe for use from multiple download workers.
type Tracker struct {
	total     int
	sequence  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	bytes     atomic.Int64
}

func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

func (t *Tracker) Started(name string) {
	seq := t.sequence.Add(1)
	log.Info().
		Str("application", name).
		Int64("index", seq).
		Int("total", t.total).
		Msg("processing application")
}

func (t *Tracker) Succeeded(name string, bytes int64) {
	t.succeeded.Add(1)
	t.bytes.Add(bytes)
	log.Info().
		Str("application", name).
		Int64("bytes", bytes).
		Msg("download completed")
}

func (t *Tracker) Failed(name string, reason string) {
	t.failed.Add(1)
	log.Warn().
		Str("application", name).
		Str("reason", reason).
		Msg("download failed")
}

func (t *Tracker) Skipped(name string, reason string) {
	t.skipped.Add(1)
	log.Warn().
		Str("application", name).
		Str("reason", reason).
		Msg("application skipped")
}

func (t *Tracker) Totals() (succeeded int64, failed int64, skipped int64, bytes int64) {
	return t.succeeded.Load(), t.failed.Load(), t.skipped.Load(), t.bytes.Load()
}
