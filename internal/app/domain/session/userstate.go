package session

import (
	"sync"
	"time"
)

const (
	regularSendInterval = 1200 * time.Millisecond
	lowSendInterval     = 150 * time.Millisecond
)

// UserState is the authenticated user's identity and capabilities as
// reported by GLOBALUSERSTATE/USERSTATE events and own-message echoes.
type UserState struct {
	UserID             string
	Color              string
	DisplayName        string
	GlobalEmoteSets    []string
	FollowerEmoteSets  map[string][]string
	ModerationChannels map[string]struct{}
	VIPChannels        map[string]struct{}
}

func newUserState() UserState {
	return UserState{
		FollowerEmoteSets:  make(map[string][]string),
		ModerationChannels: make(map[string]struct{}),
		VIPChannels:        make(map[string]struct{}),
	}
}

// SendInterval derives the outbound rate for a channel: moderators and
// VIPs get the relaxed server-side limit.
func (u UserState) SendInterval(channel string) time.Duration {
	if u.hasHighRateLimit(channel) {
		return lowSendInterval
	}
	return regularSendInterval
}

func (u UserState) hasHighRateLimit(channel string) bool {
	if _, ok := u.ModerationChannels[channel]; ok {
		return true
	}
	_, ok := u.VIPChannels[channel]
	return ok
}

func (u UserState) clone() UserState {
	out := u
	out.GlobalEmoteSets = append([]string(nil), u.GlobalEmoteSets...)
	out.FollowerEmoteSets = make(map[string][]string, len(u.FollowerEmoteSets))
	for k, v := range u.FollowerEmoteSets {
		out.FollowerEmoteSets[k] = append([]string(nil), v...)
	}
	out.ModerationChannels = make(map[string]struct{}, len(u.ModerationChannels))
	for k := range u.ModerationChannels {
		out.ModerationChannels[k] = struct{}{}
	}
	out.VIPChannels = make(map[string]struct{}, len(u.VIPChannels))
	for k := range u.VIPChannels {
		out.VIPChannels[k] = struct{}{}
	}
	return out
}

// userStateHolder serializes all UserState mutations; readers get copies.
type userStateHolder struct {
	mu    sync.RWMutex
	state UserState
}

func (h *userStateHolder) Get() UserState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.clone()
}

func (h *userStateHolder) Update(modify func(*UserState)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	modify(&h.state)
}
