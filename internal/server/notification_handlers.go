package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"empleos/internal/middleware"
	"empleos/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	wsTicketTTL         = 30 * time.Second
	notificationsLimit  = 50
	errTicketsNoBackend = "Live notifications are unavailable"
)

var errInvalidTicket = errors.New("invalid websocket ticket")

func wsTicketKey(ticket string) string {
	return fmt.Sprintf("ws_ticket:%s", ticket)
}

// GetNotifications handles GET /api/me/notifications
// @Summary Recent notifications
// @Description Newest first. Empty when Redis is not configured.
// @Tags notifications
// @Produce json
// @Param limit query int false "Max events (default 50)"
// @Success 200 {object} object{data=[]notifications.Event}
// @Security BearerAuth
// @Router /me/notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", notificationsLimit)
	if limit <= 0 || limit > notificationsLimit {
		limit = notificationsLimit
	}
	events, err := s.notifier.Recent(c.UserContext(), actorID(c), limit)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"data": events})
}

// ClearNotifications handles DELETE /api/me/notifications
func (s *Server) ClearNotifications(c *fiber.Ctx) error {
	if err := s.notifier.Clear(c.UserContext(), actorID(c)); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IssueWSTicket handles POST /api/ws/ticket. The ticket authenticates one
// websocket upgrade within wsTicketTTL.
// @Summary Issue a websocket ticket
// @Tags notifications
// @Produce json
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: errTicketsNoBackend,
			Code:  models.CodeInternal,
		})
	}
	actor, _ := middleware.ActorFrom(c)
	payload, err := json.Marshal(actor)
	if err != nil {
		return respond(c, models.NewInternalError(err))
	}
	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), wsTicketKey(ticket), payload, wsTicketTTL).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("set").Inc()
		return respond(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// consumeWSTicket returns the actor a ticket was issued for and deletes it.
func (s *Server) consumeWSTicket(ctx context.Context, ticket string) (middleware.Actor, error) {
	if s.redis == nil {
		return middleware.Actor{}, errInvalidTicket
	}
	raw, err := s.redis.GetDel(ctx, wsTicketKey(ticket)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("getdel").Inc()
		}
		return middleware.Actor{}, errInvalidTicket
	}
	var actor middleware.Actor
	if err := json.Unmarshal(raw, &actor); err != nil || actor.UserID == 0 {
		return middleware.Actor{}, errInvalidTicket
	}
	return actor, nil
}

// NotificationSocket streams the caller's notifications over a websocket.
// Inbound frames are ignored.
func (s *Server) NotificationSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("notification socket rejected", "user_id", uid, "error", err.Error())
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		client.Serve()
	})
}
