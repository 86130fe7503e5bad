package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

// GetInventory returns everything the player has collected, newest first,
// with the running total value.
func GetInventory(c *gin.Context) {
	playerId := c.GetString("playerId")

	items, err := Inventory.Items(playerId)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to load inventory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	total, err := Inventory.TotalValue(playerId)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to sum inventory value")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"totalValue": total,
	})
}
