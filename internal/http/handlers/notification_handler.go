package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin deployments only; tighten behind a proxy
	},
}

func ListNotifications(svc *crm.Notifications) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		unreadOnly := c.Query("unread") == "true"
		items, err := svc.List(c.Request.Context(), p, unreadOnly)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": items})
	}
}

func MarkNotificationRead(svc *crm.Notifications) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.MarkRead(c.Request.Context(), p, id); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "read"})
	}
}

// NotificationsWS streams the caller's notifications live over a websocket.
// The read loop only exists to notice the peer going away.
func NotificationsWS(feed *notify.Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ch, cancel := feed.Subscribe(p.UserID)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(n); err != nil {
					log.Debug().Err(err).Int64("user", p.UserID).Msg("notification ws write failed")
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
