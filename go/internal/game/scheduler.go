package game

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/hangman/go/internal/models"
)

// pendingTask is the single timer armed for a room.
type pendingTask struct {
	name  string
	timer clockwork.Timer
	stop  chan struct{}
}

// schedule replaces the room's pending task with fn, run after d under the room lock.
// Caller must hold e.mu.
func (a *App) schedule(e *roomEntry, name string, d time.Duration, fn func(e *roomEntry)) {
	a.cancelTask(e)

	seq := e.seq
	task := &pendingTask{
		name:  name,
		timer: a.clock.NewTimer(d),
		stop:  make(chan struct{}),
	}
	e.task = task

	go func() {
		select {
		case <-task.timer.Chan():
			a.runTask(e, seq, name, fn)
		case <-task.stop:
		}
	}()

	log.Debug().
		Str("room_code", e.room.Code).
		Str("task", name).
		Dur("delay", d).
		Uint64("seq", seq).
		Msg("scheduled room task")
}

// cancelTask stops the pending task, if any, and bumps the stamp so a task that
// already fired becomes a no-op. Caller must hold e.mu.
func (a *App) cancelTask(e *roomEntry) {
	e.seq++
	if e.task == nil {
		return
	}
	stopAndDrainTimer(e.task.timer)
	close(e.task.stop)
	log.Debug().Str("room_code", e.room.Code).Str("task", e.task.name).Msg("cancelled room task")
	e.task = nil
}

// runTask re-enters the room and acts only if the task is still current.
func (a *App) runTask(e *roomEntry, seq uint64, name string, fn func(e *roomEntry)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || seq != e.seq || e.room.Game == nil || e.room.State != models.RoomStatePlaying {
		log.Debug().
			Str("room_code", e.room.Code).
			Str("task", name).
			Uint64("seq", seq).
			Uint64("current_seq", e.seq).
			Msg("dropping stale room task")
		return
	}
	e.task = nil

	_ = a.guard(e, name, func() error {
		fn(e)
		return nil
	})
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
