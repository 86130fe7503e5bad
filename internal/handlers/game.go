package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/achievements"
	"github.com/kareemessam09/GeoQuest/internal/game"
	"github.com/kareemessam09/GeoQuest/internal/inventory"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
)

// Game wiring, set once from main before the routes are mounted.
var (
	GameManager *game.Manager
	Spawner     *spawn.Spawner
	Inventory   *inventory.Repo
	StatsRepo   *achievements.Repo
)

// InitGame wires the game layer into the handlers.
func InitGame(m *game.Manager, sp *spawn.Spawner, inv *inventory.Repo, stats *achievements.Repo) {
	GameManager = m
	Spawner = sp
	Inventory = inv
	StatsRepo = stats
}

// LocationInput uses pointer coordinates so that latitude 0 and longitude 0
// pass the required check; zero is a valid coordinate on both axes.
type LocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Accuracy  float64  `json:"accuracy"`
}

// PushLocation ingests one location fix. The session applies it
// asynchronously; the response confirms receipt, not application.
func PushLocation(c *gin.Context) {
	playerId := c.GetString("playerId")

	var input LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := GameManager.Session(playerId)
	fix := game.Fix{
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
		Accuracy:  input.Accuracy,
		Timestamp: time.Now(),
	}
	if err := session.PushFix(fix); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Location received"})
}

type TransitionInput struct {
	TreasureID string `json:"treasureId" binding:"required"`
	Kind       string `json:"kind" binding:"required,oneof=ENTER EXIT DWELL"`
}

// PushTransition ingests a geofence transition reported by the device.
// Publication goes through the bus, scoped to the reporting player; the
// Session call first guarantees a live subscriber exists for them.
func PushTransition(c *gin.Context) {
	playerId := c.GetString("playerId")

	var input TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	GameManager.Session(playerId)
	GameManager.Bus().Publish(game.Transition{
		PlayerID:   playerId,
		TreasureID: input.TreasureID,
		Kind:       game.TransitionKind(input.Kind),
	})

	c.JSON(http.StatusAccepted, gin.H{"message": "Transition received"})
}

// GetGameState returns a snapshot of the player's session state.
func GetGameState(c *gin.Context) {
	playerId := c.GetString("playerId")
	c.JSON(http.StatusOK, GameManager.Session(playerId).State())
}

// SelectTreasure makes a treasure the active hunt target.
func SelectTreasure(c *gin.Context) {
	playerId := c.GetString("playerId")
	treasureId := c.Param("id")

	if err := GameManager.Session(playerId).SelectTreasure(treasureId); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"selectedTreasureId": treasureId})
}

// ClearSelection returns the session to idle.
func ClearSelection(c *gin.Context) {
	playerId := c.GetString("playerId")
	GameManager.Session(playerId).ClearSelection()
	c.JSON(http.StatusOK, gin.H{"message": "Selection cleared"})
}

// CollectTreasure attempts to collect the selected treasure. Policy
// rejections (too far, nothing selected, already collected) are 200s with
// success=false, matching how the client treats them: outcomes, not errors.
func CollectTreasure(c *gin.Context) {
	playerId := c.GetString("playerId")

	result := GameManager.Session(playerId).Collect()
	if !result.Success && result.Reason == "storage error" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect treasure"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RespawnTreasures wipes and regenerates the treasure field around the
// player's last known position.
func RespawnTreasures(c *gin.Context) {
	playerId := c.GetString("playerId")

	if err := GameManager.Session(playerId).Respawn(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Treasures respawned"})
}
