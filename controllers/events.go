package controllers

import (
	"io"
	"net/http"
	"time"

	"salonpos-backend/models"
	"salonpos-backend/services"
	"salonpos-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const heartbeatInterval = 25 * time.Second

type EventsController struct {
	hub       *services.RealtimeHub
	heartbeat time.Duration
	logger    *zap.Logger
}

func NewEventsController(hub *services.RealtimeHub, logger *zap.Logger) *EventsController {
	return &EventsController{hub: hub, heartbeat: heartbeatInterval, logger: logger}
}

// streamChannel picks the recipient id a caller may listen to. Staff only receive their
// own events; admins may pick any channel or, with none, every event.
func streamChannel(identity utils.Identity, requested string) (string, bool) {
	own := identity.UserID.String()
	if identity.HasRole(models.RoleAdmin) {
		return requested, true
	}
	if requested == "" || requested == own {
		return own, true
	}
	return "", false
}

// Stream serves order-refresh and complete-refresh events over server-sent events.
func (ec *EventsController) Stream(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	channel, ok := streamChannel(identity, c.Query("channel"))
	if !ok {
		utils.RespondWithError(c, http.StatusForbidden, "Cannot subscribe to another user's events")
		return
	}

	events, unsubscribe := ec.hub.Subscribe(channel)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ticker := time.NewTicker(ec.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
	ec.logger.Debug("event stream closed", zap.String("channel", channel))
}
