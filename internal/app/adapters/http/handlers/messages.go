package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ChannelMessagesHandler(c *gin.Context) {
	ch, ok := h.reg.Get(c.Param("channel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not joined"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel":  ch.Name(),
		"messages": toItemViews(ch.Log().Snapshot()),
	})
}

func (h *Handlers) ChannelChattersHandler(c *gin.Context) {
	ch, ok := h.reg.Get(c.Param("channel"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not joined"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel":  ch.Name(),
		"chatters": ch.Presence().Snapshot(),
	})
}

func (h *Handlers) MentionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"counts":   h.reg.MentionCounts(),
		"mentions": toItemViews(h.reg.Mentions().Snapshot()),
	})
}

func (h *Handlers) WhispersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"whispers": toItemViews(h.reg.Whispers().Snapshot()),
	})
}
