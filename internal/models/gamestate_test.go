package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProximityLevelFor_Boundaries(t *testing.T) {
	// Boundary values are inclusive toward the closer band.
	assert.Equal(t, ProximityBurning, ProximityLevelFor(0))
	assert.Equal(t, ProximityBurning, ProximityLevelFor(20))
	assert.Equal(t, ProximityHot, ProximityLevelFor(20.0001))
	assert.Equal(t, ProximityHot, ProximityLevelFor(50))
	assert.Equal(t, ProximityWarm, ProximityLevelFor(50.0001))
	assert.Equal(t, ProximityWarm, ProximityLevelFor(100))
	assert.Equal(t, ProximityCool, ProximityLevelFor(100.0001))
	assert.Equal(t, ProximityCool, ProximityLevelFor(200))
	assert.Equal(t, ProximityCold, ProximityLevelFor(200.0001))
	assert.Equal(t, ProximityCold, ProximityLevelFor(500))
	assert.Equal(t, ProximityFreezing, ProximityLevelFor(500.0001))
	assert.Equal(t, ProximityFreezing, ProximityLevelFor(10_000))
}

func TestProximityLevelFor_Monotonic(t *testing.T) {
	// Closer distances never map to a farther band.
	prev := ProximityLevelFor(0)
	for d := 0.0; d <= 1000; d += 0.25 {
		band := ProximityLevelFor(d)
		assert.GreaterOrEqual(t, int(band), int(prev), "band regressed at %f", d)
		prev = band
	}
}

func TestCanCollectSelected(t *testing.T) {
	id := "t1"
	near := 19.5
	far := 500.0

	g := GameState{}
	assert.False(t, g.CanCollectSelected())

	g.SelectedTreasureID = &id
	assert.False(t, g.CanCollectSelected(), "selection without a fix is not collectable")

	g.DistanceToTarget = &far
	assert.False(t, g.CanCollectSelected())

	g.DistanceToTarget = &near
	assert.True(t, g.CanCollectSelected())
}

func TestIsNearby(t *testing.T) {
	within := 60.0
	collectable := 10.0
	outside := 150.0

	g := GameState{DistanceToTarget: &within}
	assert.True(t, g.IsNearby())

	g.DistanceToTarget = &collectable
	assert.False(t, g.IsNearby(), "collectable is closer than nearby")

	g.DistanceToTarget = &outside
	assert.False(t, g.IsNearby())
}
