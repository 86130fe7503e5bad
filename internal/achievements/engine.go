package achievements

import (
	"time"

	"github.com/kareemessam09/GeoQuest/internal/models"
)

// speedRunnerBoundMs: a collection counts for Speed Runner only when it
// took strictly less than one minute.
const speedRunnerBoundMs = 60_000

// Evaluate runs the fixed catalog against a stats snapshot and returns, in
// catalog order, every achievement that is newly satisfied. Pure: no I/O,
// no clock reads beyond the now argument.
func Evaluate(stats models.UserStats, alreadyUnlocked map[string]bool, now time.Time) []models.Achievement {
	var newlyUnlocked []models.Achievement

	for _, achievement := range models.AchievementCatalog {
		if alreadyUnlocked[achievement.ID] {
			continue
		}
		if satisfied(achievement.Requirement, stats, now) {
			unlockedAt := now
			achievement.Unlocked = true
			achievement.UnlockedAt = &unlockedAt
			newlyUnlocked = append(newlyUnlocked, achievement)
		}
	}

	return newlyUnlocked
}

func satisfied(req models.Requirement, stats models.UserStats, now time.Time) bool {
	switch req.Kind {
	case models.ReqFirstTreasure:
		return stats.TotalTreasuresCollected >= 1
	case models.ReqTreasuresCollected:
		return stats.TotalTreasuresCollected >= req.Threshold
	case models.ReqTotalPointsEarned:
		return stats.TotalPointsEarned >= req.Threshold
	case models.ReqDistanceWalked:
		return stats.TotalDistanceWalked >= float64(req.Threshold)
	case models.ReqDaysPlayed:
		days := int(now.Sub(stats.FirstPlayDate).Hours() / 24)
		return days >= req.Threshold
	case models.ReqSpeedRunner:
		return stats.FastestCollectionTimeMs != nil && *stats.FastestCollectionTimeMs < speedRunnerBoundMs
	default:
		return false
	}
}
