package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

// GetAchievements returns the full catalog annotated with the player's
// unlock state.
func GetAchievements(c *gin.Context) {
	playerId := c.GetString("playerId")

	achievements, err := StatsRepo.All(playerId)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to load achievements")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch achievements"})
		return
	}

	unlocked := 0
	for _, a := range achievements {
		if a.Unlocked {
			unlocked++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": achievements,
		"unlocked":     unlocked,
		"total":        len(achievements),
	})
}

// GetStats returns the player's lifetime stats.
func GetStats(c *gin.Context) {
	playerId := c.GetString("playerId")

	stats, err := StatsRepo.Stats(playerId)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to load stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
