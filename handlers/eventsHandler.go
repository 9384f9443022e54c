package handlers

import (
	"ClinicQueue/events"
	"io"

	"github.com/gin-gonic/gin"
)

var feedTopics = map[string]string{
	"appointments":  events.TopicAppointments,
	"patients":      events.TopicPatients,
	"conversations": events.TopicConversations,
}

type EventsHandler struct {
	feed *events.Feed
}

func NewEventsHandler(feed *events.Feed) *EventsHandler {
	return &EventsHandler{feed: feed}
}

// Stream pushes reload events for one topic over SSE. Clients re-fetch
// whatever they render on each event; the payload carries no data.
func (h *EventsHandler) Stream(c *gin.Context) {
	topic, ok := feedTopics[c.Param("topic")]
	if !ok {
		c.JSON(404, gin.H{"error": "unknown topic"})
		return
	}

	notify := make(chan struct{}, 1)
	stop, err := h.feed.Subscribe(c.Request.Context(), topic, func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	if err != nil {
		c.JSON(500, gin.H{"error": "failed to subscribe"})
		return
	}
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-notify:
			c.SSEvent("reload", c.Param("topic"))
			return true
		}
	})
}
