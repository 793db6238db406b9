// Package api exposes a running accompanist session's state over HTTP,
// for an operator watching a session that isn't attached to a terminal.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"accompanist/pkg/snapshot"
)

// @title Accompanist Status API
// @version 1.0
// @description Live status of a running score-follower session
// @BasePath /

// NewRouter builds the gin router backing the status API: a liveness
// check and a snapshot of the follower's current state, read from store.
func NewRouter(store *snapshot.Store) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)
	r.GET("/status", statusHandler(store))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer runs the status API on addr until the process exits or the
// listener errors.
func StartServer(addr string, store *snapshot.Store) error {
	return NewRouter(store).Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "accompanist"})
}

// statusResponse is the wire shape of GET /status.
type statusResponse struct {
	HasMatch      bool    `json:"has_match"`
	MatchScore    int     `json:"match_score_index,omitempty"`
	MatchLive     int     `json:"match_live_index,omitempty"`
	StretchFactor float64 `json:"stretch_factor,omitempty"`
	LiveVelocity  int     `json:"live_velocity,omitempty"`
	MatchCount    int     `json:"match_count"`
	IgnoredCount  int     `json:"ignored_count"`
	PlaybackHead  int     `json:"playback_head"`
	PlaybackTotal int     `json:"playback_total"`
	Emitted       int     `json:"emitted"`
}

// statusHandler godoc
// @Summary Current follower state
// @Description Returns the most recent match, counts, and playback head of the running session
// @Tags status
// @Produce json
// @Success 200 {object} statusResponse
// @Router /status [get]
func statusHandler(store *snapshot.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := store.Latest()
		c.JSON(http.StatusOK, statusResponse{
			HasMatch:      snap.HasMatch,
			MatchScore:    int(snap.MatchScore),
			MatchLive:     int(snap.MatchLive),
			StretchFactor: snap.StretchFactor,
			LiveVelocity:  int(snap.LiveVelocity),
			MatchCount:    snap.MatchCount,
			IgnoredCount:  snap.IgnoredCount,
			PlaybackHead:  snap.PlaybackHead,
			PlaybackTotal: snap.PlaybackTotal,
			Emitted:       snap.Emitted,
		})
	}
}
