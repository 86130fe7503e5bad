package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/kareemessam09/GeoQuest/internal/game"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
	"github.com/kareemessam09/GeoQuest/pkg/utils"
)

var SocketServer *socketio.Server

// Presence tracking
var (
	onlinePlayers   = make(map[string]string) // playerId -> socketId
	onlinePlayersMu sync.RWMutex
)

// IsPlayerOnline checks if a player has a live socket.
func IsPlayerOnline(playerId string) bool {
	onlinePlayersMu.RLock()
	defer onlinePlayersMu.RUnlock()
	_, exists := onlinePlayers[playerId]
	return exists
}

// SocketSinks emits game side effects to the player's personal room. When
// the player has no live socket the broadcasts land in an empty room,
// which is exactly the drop-on-disconnect behavior we want.
type SocketSinks struct {
	PlayerID string
}

// NewSocketSinks is the Manager.SinkFactory for realtime play.
func NewSocketSinks(playerId string) game.Sinks {
	s := &SocketSinks{PlayerID: playerId}
	return game.Sinks{Haptics: s, Notices: s, Sounds: s}
}

func (s *SocketSinks) Haptic(level models.ProximityLevel) {
	if SocketServer == nil {
		return
	}
	SocketServer.BroadcastToRoom("/", s.PlayerID, "haptic", map[string]interface{}{
		"level": level.String(),
	})
}

func (s *SocketSinks) Notify(kind, title, body string, sticky bool) {
	if SocketServer == nil {
		return
	}
	SocketServer.BroadcastToRoom("/", s.PlayerID, "notification", map[string]interface{}{
		"kind":   kind,
		"title":  title,
		"body":   body,
		"sticky": sticky,
	})
}

func (s *SocketSinks) Sound(kind string) {
	if SocketServer == nil {
		return
	}
	SocketServer.BroadcastToRoom("/", s.PlayerID, "sound", map[string]interface{}{
		"kind": kind,
	})
}

func InitSocketServer() *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		url := s.URL()

		token := url.Query().Get("token")
		if token == "" {
			token = url.Query().Get("auth_token")
		}
		if token == "" {
			logger.Warn().Str("socket_id", s.ID()).Msg("Socket connection rejected: no token")
			return fmt.Errorf("authentication required")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			logger.Warn().Str("socket_id", s.ID()).Msg("Socket connection rejected: invalid token")
			return fmt.Errorf("invalid token")
		}

		playerId := claims.PlayerID
		s.SetContext(playerId)

		onlinePlayersMu.Lock()
		onlinePlayers[playerId] = s.ID()
		onlinePlayersMu.Unlock()

		// Personal room; the session's sinks broadcast into it.
		s.Join(playerId)

		logger.Info().Str("socket_id", s.ID()).Str("player_id", playerId).Msg("Socket authenticated")

		// Warm the session so treasures spawn before the first fix lands.
		GameManager.Session(playerId)
		return nil
	})

	// Location fixes stream in over the socket during active play.
	server.OnEvent("/", "location", func(s socketio.Conn, data map[string]interface{}) {
		playerId, _ := s.Context().(string)
		if playerId == "" {
			return
		}

		lat, latOk := data["latitude"].(float64)
		lon, lonOk := data["longitude"].(float64)
		if !latOk || !lonOk {
			return
		}
		accuracy, _ := data["accuracy"].(float64)

		fix := game.Fix{
			Latitude:  lat,
			Longitude: lon,
			Accuracy:  accuracy,
			Timestamp: time.Now(),
		}
		if err := GameManager.Session(playerId).PushFix(fix); err != nil {
			s.Emit("error", map[string]interface{}{"message": err.Error()})
		}
	})

	// Geofence transitions reported by the device while backgrounded.
	server.OnEvent("/", "geofence", func(s socketio.Conn, data map[string]interface{}) {
		playerId, _ := s.Context().(string)
		if playerId == "" {
			return
		}

		treasureId, _ := data["treasureId"].(string)
		kind, _ := data["kind"].(string)
		if treasureId == "" {
			return
		}
		switch game.TransitionKind(kind) {
		case game.TransitionEnter, game.TransitionExit, game.TransitionDwell:
		default:
			return
		}

		GameManager.Session(playerId)
		GameManager.Bus().Publish(game.Transition{
			PlayerID:   playerId,
			TreasureID: treasureId,
			Kind:       game.TransitionKind(kind),
		})
	})

	// State pull for clients that missed broadcasts while reconnecting.
	server.OnEvent("/", "get_state", func(s socketio.Conn, msg string) {
		playerId, _ := s.Context().(string)
		if playerId == "" {
			return
		}
		s.Emit("game_state", GameManager.Session(playerId).State())
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		onlinePlayersMu.Lock()
		for playerId, socketId := range onlinePlayers {
			if socketId == s.ID() {
				delete(onlinePlayers, playerId)
				break
			}
		}
		onlinePlayersMu.Unlock()

		logger.Debug().Str("socket_id", s.ID()).Str("reason", reason).Msg("Socket closed")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Warn().Err(e).Msg("Socket error")
	})

	go server.Serve()
	SocketServer = server
	return server
}

// SocketHandler wraps the socket.io server for gin.
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
