package achievements

import (
	"time"

	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo owns the UserStats singleton row per player and the monotonic
// unlock table. All counter mutations go through atomic column updates so
// concurrent writers never lose increments.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// EnsureStats creates the player's stats row on first contact.
func (r *Repo) EnsureStats(playerID string) error {
	now := time.Now()
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserStats{
		PlayerID:      playerID,
		FirstPlayDate: now,
		LastPlayDate:  now,
	}).Error
}

// Stats returns the player's stats snapshot, initializing it if missing.
func (r *Repo) Stats(playerID string) (models.UserStats, error) {
	if err := r.EnsureStats(playerID); err != nil {
		return models.UserStats{}, err
	}
	var stats models.UserStats
	err := r.db.Where("player_id = ?", playerID).First(&stats).Error
	return stats, err
}

// RecordTreasureCollected bumps the collection counters, updates the
// fastest-collection time when beaten, and feeds the points leaderboard.
func (r *Repo) RecordTreasureCollected(playerID string, points int, collectionTime time.Duration) error {
	if err := r.EnsureStats(playerID); err != nil {
		return err
	}

	err := r.db.Model(&models.UserStats{}).
		Where("player_id = ?", playerID).
		Updates(map[string]interface{}{
			"total_treasures_collected": gorm.Expr("total_treasures_collected + 1"),
			"total_points_earned":       gorm.Expr("total_points_earned + ?", points),
			"last_play_date":            time.Now(),
		}).Error
	if err != nil {
		return err
	}

	ms := collectionTime.Milliseconds()
	err = r.db.Model(&models.UserStats{}).
		Where("player_id = ? AND (fastest_collection_time_ms IS NULL OR fastest_collection_time_ms > ?)", playerID, ms).
		Update("fastest_collection_time_ms", ms).Error
	if err != nil {
		return err
	}

	if err := database.LeaderboardAddPoints(playerID, points); err != nil {
		// Leaderboard is best effort; stats are the source of truth.
		logger.Warn().Err(err).Str("player", playerID).Msg("Leaderboard update failed")
	}
	return nil
}

// RecordDistanceWalked adds a walking delta to the running total.
func (r *Repo) RecordDistanceWalked(playerID string, meters float64) error {
	if err := r.EnsureStats(playerID); err != nil {
		return err
	}
	return r.db.Model(&models.UserStats{}).
		Where("player_id = ?", playerID).
		Update("total_distance_walked", gorm.Expr("total_distance_walked + ?", meters)).Error
}

// UnlockedIDs returns the set of achievement IDs the player has unlocked.
func (r *Repo) UnlockedIDs(playerID string) (map[string]bool, error) {
	var unlocks []models.AchievementUnlock
	if err := r.db.Where("player_id = ?", playerID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		ids[u.AchievementID] = true
	}
	return ids, nil
}

// CheckAndUnlock evaluates the catalog against current stats and persists
// every newly satisfied achievement. Unlocks are insert-ignore so replayed
// evaluations stay monotonic.
func (r *Repo) CheckAndUnlock(playerID string) ([]models.Achievement, error) {
	stats, err := r.Stats(playerID)
	if err != nil {
		return nil, err
	}
	unlocked, err := r.UnlockedIDs(playerID)
	if err != nil {
		return nil, err
	}

	newly := Evaluate(stats, unlocked, time.Now())
	for _, a := range newly {
		unlock := models.AchievementUnlock{
			PlayerID:      playerID,
			AchievementID: a.ID,
			UnlockedAt:    *a.UnlockedAt,
		}
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&unlock).Error; err != nil {
			return nil, err
		}
	}
	return newly, nil
}

// All returns the full catalog annotated with the player's unlock state.
func (r *Repo) All(playerID string) ([]models.Achievement, error) {
	var unlocks []models.AchievementUnlock
	if err := r.db.Where("player_id = ?", playerID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	out := make([]models.Achievement, 0, len(models.AchievementCatalog))
	for _, a := range models.AchievementCatalog {
		if at, ok := unlockedAt[a.ID]; ok {
			a.Unlocked = true
			t := at
			a.UnlockedAt = &t
		}
		out = append(out, a)
	}
	return out, nil
}
