package spawn

import (
	"math"
	"math/rand"
	"time"

	"github.com/kareemessam09/GeoQuest/internal/models"
)

const (
	MinTreasures = 5
	MaxTreasures = 10

	// Spawn annulus around the player, in meters.
	MinSpawnDistance = 100.0
	MaxSpawnDistance = 1000.0

	metersPerDegree = 111111.0
)

// TreasureNames is the pool spawn batches draw from without replacement
// until it is exhausted.
var TreasureNames = []string{
	"Ancient Gold Chest",
	"Ruby Cave",
	"Diamond Vault",
	"Emerald Temple",
	"Pharaoh's Tomb",
	"Pirate's Bounty",
	"Dragon's Hoard",
	"Sultan's Treasury",
	"Lost Artifact",
	"Mystic Shrine",
	"Hidden Crypt",
	"Crystal Cavern",
	"Golden Pyramid",
	"Secret Oasis",
	"Buried Fortune",
}

type rewardConfig struct {
	Type     models.RewardType
	Names    []string
	MinValue int
	MaxValue int
	Weight   int
}

// rewardConfigs weights sum to 100.
var rewardConfigs = []rewardConfig{
	{models.RewardGold, []string{"Golden Coins", "Gold Bars", "Gold Nuggets"}, 50, 150, 40},
	{models.RewardGem, []string{"Ruby", "Emerald", "Sapphire", "Amethyst"}, 100, 300, 30},
	{models.RewardArtifact, []string{"Ancient Scarab", "Pharaoh's Mask", "Mystic Compass", "Old Map"}, 200, 500, 20},
	{models.RewardRareArtifact, []string{"Queen's Crown", "King's Scepter", "Diamond Necklace", "Golden Idol"}, 500, 1500, 10},
}

// Generator produces randomized spawn positions and rewards. It is
// stateless apart from its RNG; inject a seeded source for reproducible
// tests.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// GeneratePosition draws a uniform distance in [MinSpawnDistance,
// MaxSpawnDistance) and a uniform bearing, then converts to a coordinate
// offset with the equirectangular approximation.
func (g *Generator) GeneratePosition(centerLat, centerLon float64) (float64, float64) {
	distance := MinSpawnDistance + g.rng.Float64()*(MaxSpawnDistance-MinSpawnDistance)
	angle := g.rng.Float64() * 360.0
	angleRad := angle * math.Pi / 180

	latOffset := distance * math.Cos(angleRad) / metersPerDegree
	lonOffset := distance * math.Sin(angleRad) / (metersPerDegree * math.Cos(centerLat*math.Pi/180))

	return centerLat + latOffset, centerLon + lonOffset
}

// PickWeightedReward walks the config table subtracting weights until the
// cursor goes negative. The trailing fallback is unreachable with integer
// weights summing to 100; it exists as a defensive assertion only.
func (g *Generator) PickWeightedReward() models.Reward {
	totalWeight := 0
	for _, cfg := range rewardConfigs {
		totalWeight += cfg.Weight
	}

	cursor := g.rng.Intn(totalWeight)
	for _, cfg := range rewardConfigs {
		cursor -= cfg.Weight
		if cursor < 0 {
			return models.Reward{
				Type:  cfg.Type,
				Name:  cfg.Names[g.rng.Intn(len(cfg.Names))],
				Value: cfg.MinValue + g.rng.Intn(cfg.MaxValue-cfg.MinValue+1),
			}
		}
	}

	fallback := rewardConfigs[0]
	return models.Reward{Type: fallback.Type, Name: fallback.Names[0], Value: fallback.MinValue}
}

// pickName draws a treasure name, avoiding names in used until the whole
// pool has been handed out, then allows repeats.
func (g *Generator) pickName(used map[string]bool) string {
	for {
		name := TreasureNames[g.rng.Intn(len(TreasureNames))]
		if !used[name] || len(used) >= len(TreasureNames) {
			used[name] = true
			return name
		}
	}
}

// BatchSize draws a uniform spawn-batch size in [MinTreasures, MaxTreasures].
func (g *Generator) BatchSize() int {
	return MinTreasures + g.rng.Intn(MaxTreasures-MinTreasures+1)
}
