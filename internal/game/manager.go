package game

import (
	"sync"

	"github.com/kareemessam09/GeoQuest/internal/achievements"
	"github.com/kareemessam09/GeoQuest/internal/inventory"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
)

// Manager owns one live session per player. Sessions are created lazily on
// first use and torn down on logout or server shutdown; their state never
// outlives them (GameState is not persisted).
type Manager struct {
	spawner *spawn.Spawner
	inv     *inventory.Repo
	stats   *achievements.Repo
	bus     *Bus

	mu       sync.Mutex
	sessions map[string]*Session

	// SinkFactory lets the realtime layer provide per-player emitters;
	// defaults to the log-backed sinks.
	SinkFactory func(playerID string) Sinks
}

func NewManager(spawner *spawn.Spawner, inv *inventory.Repo, stats *achievements.Repo, bus *Bus) *Manager {
	return &Manager{
		spawner:     spawner,
		inv:         inv,
		stats:       stats,
		bus:         bus,
		sessions:    make(map[string]*Session),
		SinkFactory: NewLogSinks,
	}
}

// Bus exposes the shared geofence bus for producers (transition webhooks).
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Session returns the player's live session, creating one if needed.
func (m *Manager) Session(playerID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[playerID]; ok {
		return s
	}

	s := NewSession(playerID, m.spawner, m.inv, m.stats, m.SinkFactory(playerID), NopRegistrar{})
	s.AttachBus(m.bus)
	m.sessions[playerID] = s
	return s
}

// EndSession tears the player's session down, cancelling its bus
// subscription and any pending timers.
func (m *Manager) EndSession(playerID string) {
	m.mu.Lock()
	s, ok := m.sessions[playerID]
	delete(m.sessions, playerID)
	m.mu.Unlock()

	if ok {
		s.End()
	}
}

// Shutdown ends every live session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.End()
	}
}
