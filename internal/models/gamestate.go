package models

import "github.com/kareemessam09/GeoQuest/internal/config"

// ProximityLevel is one of six discrete distance bands used for haptic and
// notification feedback. Ordered closest-first.
type ProximityLevel int

const (
	ProximityBurning ProximityLevel = iota // within collect radius
	ProximityHot                           // (collect, 50]
	ProximityWarm                          // (50, 100]
	ProximityCool                          // (100, 200]
	ProximityCold                          // (200, 500]
	ProximityFreezing                      // > 500
)

func (p ProximityLevel) String() string {
	switch p {
	case ProximityBurning:
		return "BURNING"
	case ProximityHot:
		return "HOT"
	case ProximityWarm:
		return "WARM"
	case ProximityCool:
		return "COOL"
	case ProximityCold:
		return "COLD"
	default:
		return "FREEZING"
	}
}

// ProximityLevelFor maps a distance in meters onto a band, evaluated
// closest-first with boundaries inclusive toward the closer band.
func ProximityLevelFor(distanceMeters float64) ProximityLevel {
	switch {
	case distanceMeters <= config.CollectRadius():
		return ProximityBurning
	case distanceMeters <= 50:
		return ProximityHot
	case distanceMeters <= 100:
		return ProximityWarm
	case distanceMeters <= 200:
		return ProximityCool
	case distanceMeters <= 500:
		return ProximityCold
	default:
		return ProximityFreezing
	}
}

// GameState is the ephemeral per-session view the event loop owns. It is
// never persisted; handlers only ever see copies taken inside the loop.
type GameState struct {
	UserLatitude  *float64 `json:"userLatitude"`
	UserLongitude *float64 `json:"userLongitude"`

	SelectedTreasureID *string  `json:"selectedTreasureId"`
	DistanceToTarget   *float64 `json:"distanceToTarget"`

	NearbyTreasureIDs map[string]bool `json:"nearbyTreasureIds"`
	Treasures         []Treasure      `json:"treasures"`

	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

// CanCollectSelected reports whether the selected treasure is within the
// collect radius of the last known location.
func (g *GameState) CanCollectSelected() bool {
	return g.SelectedTreasureID != nil &&
		g.DistanceToTarget != nil &&
		*g.DistanceToTarget <= config.CollectRadius()
}

// IsNearby reports whether the selected treasure is inside the notification
// radius but not yet collectable.
func (g *GameState) IsNearby() bool {
	return g.DistanceToTarget != nil &&
		*g.DistanceToTarget <= config.NotificationRadius() &&
		*g.DistanceToTarget > config.CollectRadius()
}
