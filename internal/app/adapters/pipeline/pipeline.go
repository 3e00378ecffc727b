package pipeline

import (
	"regexp"
	"strings"
	"sync"

	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/infrastructure/config"
)

// Pipeline is the default message pipeline: config-driven ignores and
// mention detection against the session user. Config is read per call so
// ignore-list and username changes apply to the next message. The emote
// and display stages are passthrough hooks kept for richer frontends.
type Pipeline struct {
	manager *config.Manager

	mu         sync.Mutex
	mentionFor string
	mention    *regexp.Regexp
}

func New(manager *config.Manager) *Pipeline {
	return &Pipeline{manager: manager}
}

func (p *Pipeline) IsUserBlocked(userID string) bool {
	for _, id := range p.manager.Get().Ignores {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Pipeline) ApplyIgnores(msg chat.Message) chat.Message {
	switch m := msg.(type) {
	case *chat.PrivMessage:
		if p.IsUserBlocked(m.UserID) {
			return nil
		}
	case *chat.WhisperMessage:
		if p.IsUserBlocked(m.UserID) {
			return nil
		}
	case *chat.UserNoticeMessage:
		if m.ChildMessage != nil && p.IsUserBlocked(m.ChildMessage.UserID) {
			m.ChildMessage = nil
		}
	}
	return msg
}

func (p *Pipeline) CalculateHighlightState(msg chat.Message) chat.Message {
	username := p.manager.Get().App.Username

	switch m := msg.(type) {
	case *chat.PrivMessage:
		own := username != "" && strings.EqualFold(m.Name, username)
		if !own && p.mentions(username, m.Message) {
			m.Highlight.Mention = true
			m.Highlight.Notify = true
		}
		if m.IsFirst {
			m.Highlight.Highlight = true
		}
	case *chat.WhisperMessage:
		own := username != "" && strings.EqualFold(m.Name, username)
		m.Highlight.Whisper = true
		if !own {
			m.Highlight.Notify = true
		}
	case *chat.UserNoticeMessage:
		if m.ChildMessage != nil {
			p.CalculateHighlightState(m.ChildMessage)
		}
	}
	return msg
}

func (p *Pipeline) ParseEmotesAndBadges(msg chat.Message) chat.Message {
	return msg
}

func (p *Pipeline) CalculateUserDisplay(msg chat.Message) chat.Message {
	return msg
}

// mentions matches text against the session username, recompiling the
// cached pattern only when the username changed.
func (p *Pipeline) mentions(username, text string) bool {
	if username == "" {
		return false
	}

	p.mu.Lock()
	if p.mentionFor != username {
		p.mention = regexp.MustCompile(`(?i)\b@?` + regexp.QuoteMeta(username) + `\b`)
		p.mentionFor = username
	}
	re := p.mention
	p.mu.Unlock()

	return re.MatchString(text)
}
