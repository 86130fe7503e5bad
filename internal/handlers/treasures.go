package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/geo"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/share"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
	"github.com/kareemessam09/GeoQuest/pkg/errors"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

// ListTreasures returns the player's active treasure field.
func ListTreasures(c *gin.Context) {
	playerId := c.GetString("playerId")

	treasures, err := Spawner.Available(playerId)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to list treasures")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch treasures"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"treasures": treasures,
		"count":     len(treasures),
	})
}

// GetTreasure returns one treasure by ID.
func GetTreasure(c *gin.Context) {
	treasure, err := Spawner.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Treasure not found"})
		return
	}
	c.JSON(http.StatusOK, treasure)
}

type ShareInput struct {
	TreasureIDs []string `json:"treasureIds"`
}

// ShareTreasures builds a share code for the given treasures (all active
// ones when no IDs are given).
func ShareTreasures(c *gin.Context) {
	playerId := c.GetString("playerId")

	// Body is optional: no IDs means share everything.
	var input ShareInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	treasures, err := Spawner.Available(playerId)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to load treasures for sharing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build share code"})
		return
	}

	if len(input.TreasureIDs) > 0 {
		wanted := make(map[string]bool, len(input.TreasureIDs))
		for _, id := range input.TreasureIDs {
			wanted[id] = true
		}
		filtered := treasures[:0]
		for _, t := range treasures {
			if wanted[t.ID] {
				filtered = append(filtered, t)
			}
		}
		treasures = filtered
	}

	var player models.Player
	senderName := "A friend"
	if err := database.DB.Select("username").First(&player, "id = ?", playerId).Error; err == nil {
		senderName = player.Username
	}

	code, err := share.Encode(treasures, senderName)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build share code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  code,
		"count": len(treasures),
	})
}

type ImportInput struct {
	Code string `json:"code" binding:"required"`
}

// ImportTreasures decodes a share code and adds its treasures to the
// player's field. Rewards are rolled fresh on import.
func ImportTreasures(c *gin.Context) {
	playerId := c.GetString("playerId")

	var input ImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decoded, err := share.Decode(input.Code)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			c.JSON(appErr.Code, gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid share code"})
		return
	}

	locations := make([]spawn.SharedLocation, 0, len(decoded))
	for _, t := range decoded {
		if err := geo.Validate(t.Latitude, t.Longitude); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Share code contains invalid coordinates"})
			return
		}
		locations = append(locations, spawn.SharedLocation{
			Name:      t.Name,
			Latitude:  t.Latitude,
			Longitude: t.Longitude,
		})
	}

	imported, err := Spawner.ImportShared(playerId, locations)
	if err != nil {
		logger.Error().Err(err).Str("player_id", playerId).Msg("Failed to import shared treasures")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import treasures"})
		return
	}

	sharedBy := ""
	if len(decoded) > 0 {
		sharedBy = decoded[0].SharedBy
	}

	logger.Info().
		Str("player_id", playerId).
		Int("imported", imported).
		Str("shared_by", sharedBy).
		Msg("Imported shared treasures")

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"skipped":  len(decoded) - imported,
		"sharedBy": sharedBy,
	})
}
