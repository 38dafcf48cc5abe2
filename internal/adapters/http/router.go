package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/driftapp/callrelay/internal/adapters/signal"
	"github.com/driftapp/callrelay/internal/app"
	"github.com/driftapp/callrelay/internal/config"
	"github.com/driftapp/callrelay/internal/domain"
)

type statusResponse struct {
	Status      string `json:"status"`
	ActiveRooms int    `json:"activeRooms"`
}

type roomResponse struct {
	RoomID           string `json:"roomId"`
	Exists           bool   `json:"exists"`
	ParticipantCount int    `json:"participantCount"`
}

// SetupRouter wires the relay's HTTP surface: the WebSocket upgrade endpoint
// plus small JSON status endpoints for non-upgrade callers.
func SetupRouter(cfg *config.Config, reg *app.Registry, ctrl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, statusResponse{
			Status:      "ok",
			ActiveRooms: reg.RoomCount(),
		})
	})

	r.GET("/rooms", func(c *gin.Context) {
		roomID := c.Query("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing roomId"})
			return
		}
		size, exists := reg.Size(domain.RoomID(roomID))
		c.JSON(http.StatusOK, roomResponse{
			RoomID:           roomID,
			Exists:           exists,
			ParticipantCount: size,
		})
	})

	r.GET("/ws", ctrl.HandleWS)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
