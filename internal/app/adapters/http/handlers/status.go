package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"

	"chatsync/internal/app/domain/session"
)

var startApp = time.Now()

type channelStatus struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Messages      int    `json:"messages"`
	Chatters      int    `json:"chatters"`
	Mentions      int    `json:"mentions"`
	Unread        bool   `json:"unread"`
	HistoryLoaded bool   `json:"history_loaded"`
}

func (h *Handlers) StatusHandler(c *gin.Context) {
	var channels []channelStatus
	h.reg.Each(func(ch *session.Channel) {
		channels = append(channels, channelStatus{
			Name:          ch.Name(),
			State:         ch.ConnectionState().String(),
			Messages:      ch.Log().Len(),
			Chatters:      ch.Presence().Len(),
			Mentions:      ch.MentionCount(),
			Unread:        ch.Unread(),
			HistoryLoaded: ch.HistoryLoaded(),
		})
	})

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	percent, _ := cpu.Percent(0, false)

	var cpuLoad float64
	if len(percent) > 0 {
		cpuLoad = percent[0]
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime":           time.Since(startApp).Truncate(time.Second).String(),
		"cpu_percent":      cpuLoad,
		"memory_mb":        m.Sys / 1024 / 1024,
		"active_channel":   h.reg.ActiveChannel(),
		"scrollback":       h.reg.Scrollback(),
		"whisper_mentions": h.reg.WhisperMentionCount(),
		"channels":         channels,
	})
}
