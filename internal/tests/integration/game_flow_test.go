package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	flowLat = 30.0444
	flowLon = 31.2357
)

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerPlayer(t *testing.T, r *gin.Engine, username, email string) (token, playerID string) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": "Treasure2024x",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token  string `json:"token"`
		Player struct {
			ID string `json:"id"`
		} `json:"player"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.Player.ID
}

func TestFullGameFlow(t *testing.T) {
	r, _ := setupTestServer(t)

	token, playerID := registerPlayer(t, r, "flow_hunter", "flow@example.com")

	// Plant a treasure at the player's exact position before the session
	// loads its field, so the collect later is in range.
	planted := models.Treasure{
		ID:        "planted_1",
		PlayerID:  playerID,
		Name:      "Hidden Crypt",
		Latitude:  flowLat,
		Longitude: flowLon,
		Reward:    models.Reward{Type: models.RewardGem, Name: "Ruby", Value: 250},
		SpawnedAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(&planted).Error)

	// First fix triggers the initial spawn around the player.
	w := doJSON(t, r, http.MethodPost, "/api/game/location", token, gin.H{
		"latitude":  flowLat,
		"longitude": flowLon,
		"accuracy":  5.0,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	// Spawning is asynchronous; poll until the field shows up.
	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodGet, "/api/game/state", token, nil)
		if w.Code != http.StatusOK {
			return false
		}
		var state models.GameState
		if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
			return false
		}
		return !state.Loading && len(state.Treasures) > 0
	}, 3*time.Second, 20*time.Millisecond)

	w = doJSON(t, r, http.MethodGet, "/api/treasures", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.GreaterOrEqual(t, listResp.Count, 5)

	w = doJSON(t, r, http.MethodPost, "/api/game/select/planted_1", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/game/collect", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var collect struct {
		Success  bool   `json:"success"`
		Reason   string `json:"reason"`
		Unlocked []struct {
			ID string `json:"id"`
		} `json:"unlockedAchievements"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &collect))
	require.True(t, collect.Success, collect.Reason)
	require.NotEmpty(t, collect.Unlocked)
	assert.Equal(t, "first_find", collect.Unlocked[0].ID)

	// Inventory reflects the collect.
	w = doJSON(t, r, http.MethodGet, "/api/players/me/inventory", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inv struct {
		Count      int `json:"count"`
		TotalValue int `json:"totalValue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 1, inv.Count)
	assert.Equal(t, 250, inv.TotalValue)

	// Stats reflect it too.
	w = doJSON(t, r, http.MethodGet, "/api/players/me/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.UserStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTreasuresCollected)
	assert.Equal(t, 250, stats.TotalPointsEarned)

	// A second collect with nothing selected is an outcome, not an error.
	w = doJSON(t, r, http.MethodPost, "/api/game/collect", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &collect))
	assert.False(t, collect.Success)

	// Achievements endpoint shows the unlock.
	w = doJSON(t, r, http.MethodGet, "/api/players/me/achievements", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ach struct {
		Unlocked int `json:"unlocked"`
		Total    int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ach))
	assert.Equal(t, 8, ach.Total)
	assert.GreaterOrEqual(t, ach.Unlocked, 1)
}

func TestShareFlowBetweenPlayers(t *testing.T) {
	r, _ := setupTestServer(t)

	senderToken, senderID := registerPlayer(t, r, "share_sender", "sender@example.com")
	receiverToken, receiverID := registerPlayer(t, r, "share_receiver", "receiver@example.com")

	// Give the sender a couple of treasures directly.
	for i := 0; i < 2; i++ {
		require.NoError(t, database.DB.Create(&models.Treasure{
			ID:        fmt.Sprintf("shared_src_%d", i),
			PlayerID:  senderID,
			Name:      fmt.Sprintf("Secret Oasis %d", i),
			Latitude:  flowLat + float64(i)*0.001,
			Longitude: flowLon,
			Reward:    models.Reward{Type: models.RewardGold, Name: "Golden Coins", Value: 80},
			SpawnedAt: time.Now(),
		}).Error)
	}

	w := doJSON(t, r, http.MethodPost, "/api/treasures/share", senderToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var shareResp struct {
		Code  string `json:"code"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shareResp))
	require.Equal(t, 2, shareResp.Count)
	require.Contains(t, shareResp.Code, "GEOQUEST:")

	// Receiver imports the code, embedded in a chat message.
	w = doJSON(t, r, http.MethodPost, "/api/treasures/import", receiverToken, gin.H{
		"code": "check these out! " + shareResp.Code,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var importResp struct {
		Imported int    `json:"imported"`
		Skipped  int    `json:"skipped"`
		SharedBy string `json:"sharedBy"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &importResp))
	assert.Equal(t, 2, importResp.Imported)
	assert.Equal(t, "share_sender", importResp.SharedBy)

	// Importing the same code again skips everything.
	w = doJSON(t, r, http.MethodPost, "/api/treasures/import", receiverToken, gin.H{
		"code": shareResp.Code,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &importResp))
	assert.Zero(t, importResp.Imported)
	assert.Equal(t, 2, importResp.Skipped)

	// The receiver's field now contains the imported spots.
	var count int64
	require.NoError(t, database.DB.Model(&models.Treasure{}).
		Where("player_id = ?", receiverID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPushLocation_ZeroCoordinatesAreValid(t *testing.T) {
	r, _ := setupTestServer(t)

	token, _ := registerPlayer(t, r, "null_island", "null@example.com")

	// Latitude 0 and longitude 0 are real coordinates; the required check
	// must not mistake them for missing fields.
	w := doJSON(t, r, http.MethodPost, "/api/game/location", token, gin.H{
		"latitude":  0.0,
		"longitude": 0.0,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// A genuinely missing coordinate is still rejected.
	w = doJSON(t, r, http.MethodPost, "/api/game/location", token, gin.H{
		"latitude": flowLat,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPushGeofence_RoutedThroughBus(t *testing.T) {
	r, manager := setupTestServer(t)

	token, playerID := registerPlayer(t, r, "fence_rider", "fence@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/game/geofence", token, gin.H{
		"treasureId": "fence_1",
		"kind":       "ENTER",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	// Bus delivery is asynchronous; the nearby set converges shortly after.
	session := manager.Session(playerID)
	require.Eventually(t, func() bool {
		return session.State().NearbyTreasureIDs["fence_1"]
	}, 2*time.Second, 10*time.Millisecond)

	// Another player's session never sees it.
	other := manager.Session("someone_else")
	assert.False(t, other.State().NearbyTreasureIDs["fence_1"])
}

func TestUploadAvatar_RequiresConfiguredStorage(t *testing.T) {
	r, _ := setupTestServer(t)

	token, _ := registerPlayer(t, r, "pic_hunter", "pic@example.com")

	// No object storage in the test config: the endpoint degrades cleanly.
	w := doJSON(t, r, http.MethodPost, "/api/players/me/avatar", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// With storage configured, a request without a file is a client error
	// caught before any upload is attempted.
	config.AppConfig.R2AccountID = "test-account"
	config.AppConfig.R2BucketName = "test-bucket"
	w = doJSON(t, r, http.MethodPost, "/api/players/me/avatar", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
