package session

import (
	"context"
	stderrors "errors"

	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
)

// ShuffleExclude is how many recently played songs shuffle avoids.
const ShuffleExclude = 10

// advance applies the advance policy if valid still holds under the lock.
// Repeat restarts the current song in place; otherwise the chosen song is
// played like any other.
func (s *Session) advance(ctx context.Context, valid func() bool) error {
	s.mu.Lock()
	if !valid() {
		s.mu.Unlock()
		return nil
	}

	if s.repeat && s.song != nil {
		err := s.startLocked(ctx)
		state := s.snapshotLocked()
		s.mu.Unlock()

		s.emit(EventTrackRestart, state, nil)
		s.emitStartResult(state, err)
		return err
	}

	if s.catalog.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	target := s.pickNextLocked()
	s.mu.Unlock()

	return s.Play(ctx, target)
}

func (s *Session) pickNextLocked() core.Song {
	songs := s.catalog.All()

	if s.shuffle {
		exclude := make(map[string]bool, ShuffleExclude+1)
		for i, song := range s.history.RecentlyPlayed() {
			if i >= ShuffleExclude {
				break
			}
			exclude[song.ID] = true
		}
		if s.song != nil {
			exclude[s.song.ID] = true
		}

		pool := make([]core.Song, 0, len(songs))
		for _, song := range songs {
			if !exclude[song.ID] {
				pool = append(pool, song)
			}
		}
		if len(pool) == 0 {
			pool = songs
		}
		return pool[s.rnd(len(pool))]
	}

	if s.song == nil {
		return songs[0]
	}
	i := s.catalog.Index(s.song.ID)
	if i < 0 {
		return songs[0]
	}
	return songs[(i+1)%len(songs)]
}

// finishTrack handles one end-of-track condition. Whichever of the clock,
// the driver's end event or its watchdog arrives first wins; the rest are
// dropped by endHandled.
func (s *Session) finishTrack(current func() bool, source string) {
	s.mu.Lock()
	if s.song == nil || s.endHandled || !current() {
		s.mu.Unlock()
		return
	}
	s.endHandled = true
	s.stopClockLocked()
	s.progress = s.duration
	gen := s.gen
	stuck := !s.repeat && s.catalog.Len() == 0
	if stuck {
		s.status = core.StatusPaused
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("track finished", "song", state.Song.ID, "source", source)
	s.emit(EventTrackComplete, state, nil)
	if stuck {
		// Nothing to advance to.
		s.emit(EventPause, state, nil)
		return
	}

	err := s.advance(context.Background(), func() bool { return s.gen == gen })
	if err != nil && !stderrors.Is(err, errors.ErrPlaybackBlocked) {
		s.logger.Warn("failed to advance", "error", err)
	}
}

func (s *Session) handleDriverEnded(load uint64) {
	s.finishTrack(func() bool { return load == s.driverLoad }, "driver")
}

// handleDriverError pauses on resource errors. It does not advance.
func (s *Session) handleDriverError(load uint64, err error) {
	s.mu.Lock()
	if s.song == nil || load != s.driverLoad {
		s.mu.Unlock()
		return
	}
	s.stopClockLocked()
	s.status = core.StatusPaused
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Warn("playback error", "song", state.Song.ID, "error", err)
	s.emit(EventError, state, err)
}
