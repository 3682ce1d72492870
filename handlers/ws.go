package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/4dave/corralio/middleware"
	"github.com/4dave/corralio/models"
	"github.com/4dave/corralio/services"
	"github.com/4dave/corralio/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

const eventIDKey = "event_id"

// WSHandler fans new comments out to everyone viewing the same event.
type WSHandler struct {
	M      *melody.Melody
	Events *services.EventService
	Access *services.AccessService
}

func NewWSHandler(events *services.EventService, access *services.AccessService) *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 4 * 1024

	// Keep-alive for proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		utils.LogWebSocket("Connected", sessionEventID(s))
	})

	m.HandleDisconnect(func(s *melody.Session) {
		utils.LogWebSocket("Disconnected", sessionEventID(s))
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeError("WebSocket error on event %s: %v", sessionEventID(s), err)
	})

	return &WSHandler{M: m, Events: events, Access: access}
}

// HandleWS upgrades viewers of an event, applying the same gate as the page.
func (h *WSHandler) HandleWS(c *gin.Context) {
	e, err := h.Events.GetByShareToken(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		jsonError(c, err)
		return
	}

	credential, _ := c.Cookie(services.AccessCookieName(e.ID))
	if !h.Access.CanView(e, middleware.GetIdentity(c), credential) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This event is private"})
		return
	}

	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{eventIDKey: e.ID}); err != nil {
		utils.SafeWarn("Failed to upgrade websocket for event %s: %v", e.ID, err)
	}
}

func sessionEventID(s *melody.Session) string {
	v, _ := s.Get(eventIDKey)
	id, _ := v.(string)
	return id
}

type commentMessage struct {
	Type    string         `json:"type"`
	Comment models.Comment `json:"comment"`
}

// BroadcastComment implements services.Broadcaster.
func (h *WSHandler) BroadcastComment(eventID string, comment models.Comment) {
	msg, err := json.Marshal(commentMessage{Type: "comment", Comment: comment})
	if err != nil {
		utils.SafeError("Error encoding comment for event %s: %v", eventID, err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get(eventIDKey)
		return exists && id == eventID
	})
	if err != nil {
		utils.SafeWarn("Error broadcasting to event %s: %v", eventID, err)
	}
}
