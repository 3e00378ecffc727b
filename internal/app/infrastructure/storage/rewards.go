package storage

import (
	"sync"
	"time"

	"github.com/maypok86/otter/v2"

	"chatsync/internal/app/domain/chat"
)

// Rewards correlates point redemptions that require user input with the
// chat message carrying the matching custom-reward-id tag. The metadata
// can arrive on the push stream either before or after the chat message:
// early redemptions are parked here until taken, and a message that
// arrives first can wait briefly for its redemption. Parked entries
// expire so a stale redemption never attaches to an unrelated later
// message reusing the same reward id.
type Rewards struct {
	pending *otter.Cache[string, *chat.RedemptionData]

	mu      sync.Mutex
	waiters map[string]chan *chat.RedemptionData
}

func NewRewards(ttl time.Duration) *Rewards {
	return &Rewards{
		pending: otter.Must(&otter.Options[string, *chat.RedemptionData]{
			ExpiryCalculator: otter.ExpiryWriting[string, *chat.RedemptionData](ttl),
		}),
		waiters: make(map[string]chan *chat.RedemptionData),
	}
}

// Offer delivers a redemption: a message already waiting on the reward id
// consumes it directly, otherwise it is parked until taken or expired.
func (r *Rewards) Offer(data *chat.RedemptionData) {
	r.mu.Lock()
	ch, ok := r.waiters[data.RewardID]
	if ok {
		delete(r.waiters, data.RewardID)
	}
	r.mu.Unlock()

	if ok {
		ch <- data
		return
	}
	r.pending.Set(data.RewardID, data)
}

// Take consumes a parked redemption for the reward id, if any.
func (r *Rewards) Take(rewardID string) (*chat.RedemptionData, bool) {
	data, ok := r.pending.GetIfPresent(rewardID)
	if !ok {
		return nil, false
	}
	r.pending.Invalidate(rewardID)
	return data, true
}

// Wait blocks until a redemption for the reward id is offered or the
// timeout elapses. Only the calling message's processing is suspended;
// the timer resolves the wait, never polling.
func (r *Rewards) Wait(rewardID string, timeout time.Duration) (*chat.RedemptionData, bool) {
	ch := make(chan *chat.RedemptionData, 1)

	r.mu.Lock()
	r.waiters[rewardID] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.waiters, rewardID)
		r.mu.Unlock()
	}()

	// A redemption offered between the caller's miss and the waiter
	// registration was parked, not delivered. Re-check before blocking.
	if data, ok := r.Take(rewardID); ok {
		return data, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-ch:
		return data, true
	case <-timer.C:
		return nil, false
	}
}
