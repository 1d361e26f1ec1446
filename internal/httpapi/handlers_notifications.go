package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medilink/internal/auth"
)

func (s *Server) listNotifications(c *gin.Context) {
	notes, err := s.deps.Notifications.List(c.Request.Context(), auth.Current(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (s *Server) unreadCount(c *gin.Context) {
	n, err := s.deps.Notifications.UnreadCount(c.Request.Context(), auth.Current(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) markRead(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	note, err := s.deps.Notifications.MarkRead(c.Request.Context(), auth.Current(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (s *Server) markAllRead(c *gin.Context) {
	n, err := s.deps.Notifications.MarkAllRead(c.Request.Context(), auth.Current(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}
