package migrations

import (
	"gorm.io/gorm"
)

// Migration001AddHotPathIndexes adds indexes for the queries that run on
// every location fix:
// 1. Active treasure lookup (player_id, collected)
// 2. Inventory listing (player_id, collected_at DESC)
// 3. Leaderboard fallback when redis is down (total_points_earned DESC)
//
// All indexes are idempotent (IF NOT EXISTS) for safe re-runs.
func Migration001AddHotPathIndexes() Migration {
	return Migration{
		ID:   "001_add_hot_path_indexes",
		Name: "Add indexes for fix-rate treasure and inventory queries",
		Up: func(db *gorm.DB) error {
			// Active treasure lookup
			// Optimizes: WHERE player_id = ? AND collected = false AND spawned_at > ?
			idx1 := `
				CREATE INDEX IF NOT EXISTS idx_spawned_treasures_active
				ON spawned_treasures (player_id, collected, spawned_at)
			`
			if err := db.Exec(idx1).Error; err != nil {
				return err
			}

			// Inventory listing, newest first
			idx2 := `
				CREATE INDEX IF NOT EXISTS idx_inventory_items_player_collected
				ON inventory_items (player_id, collected_at DESC)
			`
			if err := db.Exec(idx2).Error; err != nil {
				return err
			}

			// Leaderboard fallback ordering
			idx3 := `
				CREATE INDEX IF NOT EXISTS idx_user_stats_points
				ON user_stats (total_points_earned DESC)
			`
			return db.Exec(idx3).Error
		},
		Down: func(db *gorm.DB) error {
			for _, idx := range []string{
				"idx_spawned_treasures_active",
				"idx_inventory_items_player_collected",
				"idx_user_stats_points",
			} {
				if err := db.Exec("DROP INDEX IF EXISTS " + idx).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
