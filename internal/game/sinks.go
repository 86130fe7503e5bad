package game

import (
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

// LogSinks writes side effects to the structured log. It is the default
// when no realtime client is attached; the socket layer swaps in its own
// emitter per connected player.
type LogSinks struct {
	PlayerID string
}

func NewLogSinks(playerID string) Sinks {
	s := &LogSinks{PlayerID: playerID}
	return Sinks{Haptics: s, Notices: s, Sounds: s}
}

func (s *LogSinks) Haptic(level models.ProximityLevel) {
	logger.Debug().
		Str("player", s.PlayerID).
		Str("level", level.String()).
		Msg("Haptic pulse")
}

func (s *LogSinks) Notify(kind, title, body string, sticky bool) {
	logger.Info().
		Str("player", s.PlayerID).
		Str("kind", kind).
		Str("title", title).
		Bool("sticky", sticky).
		Msg("Notification")
}

func (s *LogSinks) Sound(kind string) {
	logger.Debug().
		Str("player", s.PlayerID).
		Str("sound", kind).
		Msg("Sound cue")
}

// NopRegistrar accepts every registration without doing anything. Real
// geofencing runs on the mobile client; the server only needs the
// registration calls to succeed so the flow matches the device behavior.
type NopRegistrar struct{}

func (NopRegistrar) Register(treasures []models.Treasure) (bool, error) {
	return true, nil
}

func (NopRegistrar) Unregister(ids []string) {}
