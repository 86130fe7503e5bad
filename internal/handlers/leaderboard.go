package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

const leaderboardCacheTTL = 30 * time.Second

type leaderboardRow struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// GetLeaderboard returns the top players by total points. The redis sorted
// set is the fast path; when redis is down it falls back to the stats
// table, which is the source of truth either way.
func GetLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	cacheKey := "leaderboard:top:" + strconv.Itoa(limit)
	var cached []leaderboardRow
	if err := database.CacheGet(cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"leaderboard": cached})
		return
	}

	rows, err := leaderboardFromRedis(limit)
	if err != nil || rows == nil {
		rows, err = leaderboardFromDB(limit)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load leaderboard")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
			return
		}
	}

	if err := database.CacheSet(cacheKey, rows, leaderboardCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache leaderboard")
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

func leaderboardFromRedis(limit int) ([]leaderboardRow, error) {
	entries, err := database.LeaderboardTop(limit)
	if err != nil || len(entries) == 0 {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PlayerID)
	}
	var players []models.Player
	if err := database.DB.Select("id, username").Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Username
	}

	rows := make([]leaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, leaderboardRow{
			Rank:     e.Rank,
			PlayerID: e.PlayerID,
			Username: names[e.PlayerID],
			Points:   e.Points,
		})
	}
	return rows, nil
}

func leaderboardFromDB(limit int) ([]leaderboardRow, error) {
	var stats []models.UserStats
	err := database.DB.
		Order("total_points_earned desc").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}

	rows := make([]leaderboardRow, 0, len(stats))
	for i, s := range stats {
		var player models.Player
		username := ""
		if err := database.DB.Select("username").First(&player, "id = ?", s.PlayerID).Error; err == nil {
			username = player.Username
		}
		rows = append(rows, leaderboardRow{
			Rank:     i + 1,
			PlayerID: s.PlayerID,
			Username: username,
			Points:   s.TotalPointsEarned,
		})
	}
	return rows, nil
}
