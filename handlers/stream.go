// handlers/stream.go - Live comment feed over websocket
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"
)

const (
	localTaskID      = "taskId"
	streamPingPeriod = 30 * time.Second
	streamWriteWait  = 10 * time.Second
)

// StreamUpgrade authorizes the upgrade: the caller must be allowed to view
// the task before any event is delivered.
// GET /ws/tasks/:id/comments?token=
func (h *Handler) StreamUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	actorID, taskID, err := actorAndTask(c)
	if err != nil {
		return err
	}
	if _, err := h.Tasks.GetTask(c.UserContext(), actorID, taskID); err != nil {
		return err
	}
	c.Locals(localTaskID, taskID)
	return c.Next()
}

// StreamComments forwards feed events for the task as JSON text frames
// until the client goes away.
func (h *Handler) StreamComments() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		taskID, _ := conn.Locals(localTaskID).(uint)
		events, cancel := h.Feed.Subscribe(taskID)
		defer cancel()

		logger := log.WithField("task", taskID)
		logger.Debug("comment stream opened")
		defer logger.Debug("comment stream closed")

		// Reads only detect the close; clients send nothing meaningful.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(streamPingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-gone:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteJSON(ev); err != nil {
					logger.WithError(err).Debug("comment stream write failed")
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
					return
				}
			}
		}
	})
}
