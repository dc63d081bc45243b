package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hyperkids/gym-app/internal/realtime"
)

// Collections clients may watch. Anything else is rejected so a client
// cannot stream internal collections.
var watchableCollections = map[string]bool{
	"program_assignments": true,
	"workout_completions": true,
}

// EventsHandler streams reload signals to clients over Server-Sent Events.
// A signal carries no payload; the client refetches its snapshot.
type EventsHandler struct {
	watcher *realtime.Watcher
}

func NewEventsHandler(watcher *realtime.Watcher) *EventsHandler {
	return &EventsHandler{watcher: watcher}
}

// Stream opens an SSE stream of change signals for one collection. The
// stream lives until the client disconnects.
func (h *EventsHandler) Stream(c *gin.Context) {
	collection := c.Param("collection")
	if !watchableCollections[collection] {
		abortWithError(c, http.StatusNotFound, "Unknown event stream.")
		return
	}

	sub, err := h.watcher.Subscribe(c.Request.Context(), collection)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to open event stream.")
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.SSEvent("ready", gin.H{"subscription": sub.ID})

	c.Stream(func(w io.Writer) bool {
		select {
		case _, open := <-sub.C:
			if !open {
				return false
			}
			c.SSEvent("reload", gin.H{"collection": collection})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
