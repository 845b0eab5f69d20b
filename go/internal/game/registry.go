package game

import (
	"sync"

	"github.com/mcdev12/hangman/go/internal/models"
)

const maxCodeAttempts = 16

// roomEntry owns a room and its single pending task. All fields are guarded by mu.
type roomEntry struct {
	mu     sync.Mutex
	room   *models.Room
	closed bool
	task   *pendingTask
	seq    uint64
}

// Registry is the process-wide table of live rooms keyed by code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
	codes CodeGenerator
}

// NewRegistry creates an empty registry. A nil generator uses RandomCodeGenerator.
func NewRegistry(codes CodeGenerator) *Registry {
	if codes == nil {
		codes = NewRandomCodeGenerator(nil)
	}
	return &Registry{
		rooms: make(map[string]*roomEntry),
		codes: codes,
	}
}

// create allocates a fresh code and stores the room built for it.
func (r *Registry) create(build func(code string) *models.Room) (*roomEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := r.codes.Generate()
		if _, exists := r.rooms[code]; exists {
			continue
		}
		e := &roomEntry{room: build(code)}
		r.rooms[code] = e
		return e, nil
	}
	return nil, ErrCodeSpaceExhausted
}

func (r *Registry) get(code string) (*roomEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return e, nil
}

func (r *Registry) delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

// entries returns a snapshot of all live entries.
func (r *Registry) entries() []*roomEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*roomEntry, 0, len(r.rooms))
	for _, e := range r.rooms {
		out = append(out, e)
	}
	return out
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
