package game

import (
	"time"

	"github.com/kareemessam09/GeoQuest/internal/models"
)

// Fix is a best-effort position report from a location source.
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

type TransitionKind string

const (
	TransitionEnter TransitionKind = "ENTER"
	TransitionExit  TransitionKind = "EXIT"
	TransitionDwell TransitionKind = "DWELL"
)

// Transition is an asynchronous geofence event. Delivery is
// platform-scheduled: it may lag, arrive out of order relative to location
// fixes, or be dropped entirely. PlayerID scopes bus delivery to one
// session; empty means broadcast.
type Transition struct {
	PlayerID   string         `json:"playerId"`
	TreasureID string         `json:"treasureId"`
	Kind       TransitionKind `json:"kind"`
}

// LocationSource is a push stream of fixes. Errors on the stream are
// non-fatal: the session keeps operating on stale location.
type LocationSource interface {
	Subscribe() (<-chan Fix, <-chan error, func())
}

// GeofenceRegistrar registers circular regions for background transition
// delivery. Registration is best effort; failure must not break the
// foreground location path.
type GeofenceRegistrar interface {
	Register(treasures []models.Treasure) (bool, error)
	Unregister(ids []string)
}

// Sinks are fire-and-forget side-effect channels; the session never
// consumes a return value from them.
type HapticSink interface {
	Haptic(level models.ProximityLevel)
}

type NotifySink interface {
	Notify(kind, title, body string, sticky bool)
}

type SoundSink interface {
	Sound(kind string)
}

// Sinks bundles the side-effect channels a session emits into. A nil
// field silently swallows its effect.
type Sinks struct {
	Haptics HapticSink
	Notices NotifySink
	Sounds  SoundSink
}

func (s Sinks) Haptic(level models.ProximityLevel) {
	if s.Haptics != nil {
		s.Haptics.Haptic(level)
	}
}

func (s Sinks) Notify(kind, title, body string, sticky bool) {
	if s.Notices != nil {
		s.Notices.Notify(kind, title, body, sticky)
	}
}

func (s Sinks) Sound(kind string) {
	if s.Sounds != nil {
		s.Sounds.Sound(kind)
	}
}

// Notification kinds.
const (
	NotifyProximity   = "proximity"
	NotifyVeryClose   = "very_close"
	NotifyCollected   = "treasure_collected"
	NotifyAchievement = "achievement_unlocked"
)

// Sound kinds.
const (
	SoundTreasureNearby      = "treasure_nearby"
	SoundTreasureFound       = "treasure_found"
	SoundAchievementUnlocked = "achievement_unlocked"
)
