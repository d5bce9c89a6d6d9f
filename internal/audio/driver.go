package audio

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/logging"
)

// DefaultWatchdogGrace is added to a resource's duration before the
// watchdog forces end-of-track.
const DefaultWatchdogGrace = 2 * time.Second

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Driver holds at most one Stream. Loading a new resource releases the old
// one first: its events are ignored from then on, its watchdog is stopped
// and any pending gesture retry for it is dropped.
type Driver struct {
	mu        sync.Mutex
	backend   Backend
	grace     time.Duration
	afterFunc AfterFunc
	logger    *slog.Logger

	stream   Stream
	ref      ResourceRef
	gen      uint64
	volume   float64
	paused   bool
	ended    bool
	retry    bool
	watchdog Timer

	onEnded func(load uint64)
	onError func(load uint64, err error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithWatchdogGrace sets the grace period past a resource's duration.
func WithWatchdogGrace(d time.Duration) Option {
	return func(dr *Driver) { dr.grace = d }
}

// WithAfterFunc replaces time.AfterFunc for the watchdog.
func WithAfterFunc(fn AfterFunc) Option {
	return func(dr *Driver) { dr.afterFunc = fn }
}

// WithLogger sets the driver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(dr *Driver) { dr.logger = l }
}

// NewDriver creates a driver over backend.
func NewDriver(backend Backend, opts ...Option) *Driver {
	d := &Driver{
		backend:   backend,
		grace:     DefaultWatchdogGrace,
		afterFunc: realAfterFunc,
		volume:    1,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.OrDefault(d.logger)
	return d
}

// OnEnded registers the end-of-track callback. It receives the load id
// returned by LoadAndPlay and runs on a timer or backend goroutine, never
// while the driver's lock is held.
func (d *Driver) OnEnded(fn func(load uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onEnded = fn
}

// OnError registers the resource error callback.
func (d *Driver) OnError(fn func(load uint64, err error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

// LoadAndPlay releases any held stream, opens ref and starts it. The
// returned load id tags this stream's OnEnded and OnError callbacks. It
// returns errors.ErrPlaybackBlocked when autoplay is refused; the next
// Interact call then retries once. Other failures wrap
// errors.ErrResourceFailed and leave the driver usable.
func (d *Driver) LoadAndPlay(ctx context.Context, ref ResourceRef) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseLocked()
	d.gen++
	gen := d.gen

	stream, err := d.backend.Open(ref, Handlers{
		OnEnded: func() { d.handleEnded(gen) },
		OnError: func(err error) { d.handleError(gen, err) },
	})
	if err != nil {
		d.logger.Warn("failed to open resource", "url", ref.URL, "error", err)
		return gen, fmt.Errorf("%w: %s: %w", errors.ErrResourceFailed, ref.URL, err)
	}

	d.stream = stream
	d.ref = ref
	d.paused = true
	stream.SetVolume(d.volume)

	return gen, d.startLocked()
}

// Pause pauses the held stream and disarms its watchdog and any pending retry.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return
	}
	d.stream.Pause()
	d.paused = true
	d.retry = false
	d.stopWatchdogLocked()
}

// Resume restarts a paused stream. Like LoadAndPlay it may return
// errors.ErrPlaybackBlocked and arm a gesture retry.
func (d *Driver) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil || !d.paused {
		return nil
	}
	return d.startLocked()
}

// Seek moves the held stream to seconds.
func (d *Driver) Seek(seconds int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return
	}
	d.stream.Seek(seconds)
	if !d.paused && !d.ended {
		d.armWatchdogLocked(seconds)
	}
}

// SetVolume clamps level to [0,1] and applies it now and to later streams.
func (d *Driver) SetVolume(level float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.volume = clamp01(level)
	if d.stream != nil {
		d.stream.SetVolume(d.volume)
	}
	return d.volume
}

// Position reports the held stream's own clock.
func (d *Driver) Position() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return 0, false
	}
	return d.stream.Position()
}

// Interact delivers a user gesture. If a blocked start is pending, it is
// retried exactly once and Interact reports whether audio started.
func (d *Driver) Interact(kind InputKind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ga, ok := d.backend.(GestureAware); ok {
		ga.NotifyGesture(kind)
	}
	if !d.retry || d.stream == nil {
		return false
	}
	d.retry = false

	d.logger.Debug("retrying blocked playback", "input", kind.String(), "url", d.ref.URL)
	return d.startLocked() == nil
}

// pending reports whether a blocked start is waiting for a gesture.
func (d *Driver) pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.retry
}

// Loaded reports whether a stream is held.
func (d *Driver) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stream != nil
}

// Close releases the held stream.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseLocked()
	d.gen++
	return nil
}

// startLocked plays the held stream and arms the watchdog or the retry.
func (d *Driver) startLocked() error {
	pos, _ := d.stream.Position()

	if err := d.stream.Play(); err != nil {
		if stderrors.Is(err, errors.ErrPlaybackBlocked) {
			d.retry = true
			d.logger.Info("playback blocked until user interaction", "url", d.ref.URL)
			return errors.ErrPlaybackBlocked
		}
		d.logger.Warn("failed to start resource", "url", d.ref.URL, "error", err)
		return fmt.Errorf("%w: %s: %w", errors.ErrResourceFailed, d.ref.URL, err)
	}

	d.paused = false
	d.ended = false
	d.retry = false
	d.armWatchdogLocked(pos)
	return nil
}

// armWatchdogLocked schedules forced end-of-track at the remaining
// duration plus grace, measured from position.
func (d *Driver) armWatchdogLocked(position int) {
	d.stopWatchdogLocked()
	if d.ref.Duration <= 0 {
		return
	}

	remaining := max(d.ref.Duration-position, 0)
	gen := d.gen
	d.watchdog = d.afterFunc(time.Duration(remaining)*time.Second+d.grace, func() {
		d.fireWatchdog(gen)
	})
}

func (d *Driver) stopWatchdogLocked() {
	if d.watchdog != nil {
		d.watchdog.Stop()
		d.watchdog = nil
	}
}

// releaseLocked closes the held stream. Its pending events become stale
// once the caller bumps d.gen.
func (d *Driver) releaseLocked() {
	d.stopWatchdogLocked()
	d.retry = false
	if d.stream != nil {
		if err := d.stream.Close(); err != nil {
			d.logger.Debug("failed to close stream", "url", d.ref.URL, "error", err)
		}
		d.stream = nil
	}
	d.paused = false
	d.ended = false
}

func (d *Driver) handleEnded(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.ended {
		d.mu.Unlock()
		return
	}
	d.ended = true
	d.paused = true
	d.stopWatchdogLocked()
	cb := d.onEnded
	d.mu.Unlock()

	if cb != nil {
		cb(gen)
	}
}

func (d *Driver) fireWatchdog(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.ended || d.paused || d.stream == nil {
		d.mu.Unlock()
		return
	}
	d.logger.Debug("watchdog ending resource", "url", d.ref.URL)
	d.stream.Pause()
	d.ended = true
	d.paused = true
	d.watchdog = nil
	cb := d.onEnded
	d.mu.Unlock()

	if cb != nil {
		cb(gen)
	}
}

func (d *Driver) handleError(gen uint64, err error) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.stopWatchdogLocked()
	d.paused = true
	d.retry = false
	cb := d.onError
	url := d.ref.URL
	d.mu.Unlock()

	d.logger.Warn("audio resource error", "url", url, "error", err)
	if cb != nil {
		cb(gen, fmt.Errorf("%w: %w", errors.ErrResourceFailed, err))
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
