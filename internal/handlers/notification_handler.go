package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/middleware"
	"github.com/anonto42/gamematch/backend/internal/services"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
	"github.com/anonto42/gamematch/backend/pkg/logger"
	"github.com/anonto42/gamematch/backend/pkg/pubsub"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NotificationHandler serves the inbox and the realtime stream.
type NotificationHandler struct {
	notifications *services.NotificationService
	subscriber    pubsub.Subscriber
}

// NewNotificationHandler creates the handler. subscriber may be nil when the
// transport cannot be consumed (kafka, none); the stream then answers 503.
func NewNotificationHandler(notifications *services.NotificationService, subscriber pubsub.Subscriber) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, subscriber: subscriber}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, auth *middleware.Auth) {
	n := g.Group("/notifications", auth.Required())
	n.GET("", h.GetNotifications)
	n.GET("/unread-count", h.GetUnreadCount)
	n.PUT("/read-all", h.MarkAllAsRead)
	n.PUT("/:id/read", h.MarkAsRead)
	n.GET("/stream", h.Stream)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, err := h.notifications.List(c.Request().Context(), middleware.CurrentUser(c), pageParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": page})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.notifications.MarkAsRead(c.Request().Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.notifications.MarkAllAsRead(c.Request().Context(), middleware.CurrentUser(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream upgrades to a websocket and relays the caller's channel until either
// side goes away.
func (h *NotificationHandler) Stream(c echo.Context) error {
	if h.subscriber == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "realtime stream unavailable")
	}

	user := middleware.CurrentUser(c)
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	messages, err := h.subscriber.Subscribe(ctx, pubsub.UserChannel(user.ExternalID))
	if err != nil {
		return errorx.Wrap(errorx.Internal, err, "failed to subscribe")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the response.
		return nil
	}
	defer ws.Close()

	l := logger.Ctx(ctx)
	l.Debug().Str("channel", pubsub.UserChannel(user.ExternalID)).Msg("realtime stream opened")

	// Clients only send control frames; a read error means they left.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(msg); err != nil {
				return nil
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}
