package pubsub

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/app/infrastructure/config"
	"chatsync/internal/app/ports"
	"chatsync/pkg/logger"
)

func newTestPubSub() *PubSub {
	return New(logger.New(), &config.Config{}, http.DefaultClient)
}

func TestPubSub_DispatchRedemption(t *testing.T) {
	p := newTestPubSub()
	p.topics["community-points-channel-v1.11148817"] = "pajlada"

	message := `{"type":"reward-redeemed","data":{"timestamp":"2024-01-15T12:00:00.000Z","redemption":{"id":"r-1","user":{"id":"22484632","login":"forsen","display_name":"Forsen"},"reward":{"id":"reward-1","title":"Song Request","cost":500,"is_user_input_required":true,"default_image":{"url_2x":"https://example.com/default.png"}},"user_input":"play something"}}}`
	p.dispatch("community-points-channel-v1.11148817", message)

	select {
	case event := <-p.Events():
		assert.Equal(t, ports.PubSubPointRedemption, event.Kind)
		assert.Equal(t, "pajlada", event.Channel)
		require.NotNil(t, event.Redemption)
		assert.Equal(t, "r-1", event.Redemption.ID)
		assert.Equal(t, "reward-1", event.Redemption.RewardID)
		assert.Equal(t, 500, event.Redemption.RewardCost)
		assert.True(t, event.Redemption.RequiresUserInput)
		assert.Equal(t, "forsen", event.Redemption.UserLogin)
		assert.Equal(t, "play something", event.Redemption.UserInput)
		assert.Equal(t, "https://example.com/default.png", event.Redemption.ImageURL)
	default:
		t.Fatal("no event dispatched")
	}
}

func TestPubSub_DispatchRedemptionUnknownTopic(t *testing.T) {
	p := newTestPubSub()

	p.dispatch("community-points-channel-v1.999", `{"type":"reward-redeemed","data":{}}`)

	select {
	case <-p.Events():
		t.Fatal("event dispatched for unknown topic")
	default:
	}
}

func TestPubSub_DispatchWhisper(t *testing.T) {
	p := newTestPubSub()

	message := `{"type":"whisper_received","data_object":{"message_id":"41","from_id":22484632,"body":"psst","sent_ts":1700000000,"tags":{"login":"forsen","display_name":"Forsen","color":"#FF0000"},"recipient":{"id":100}}}`
	p.dispatch("whispers.100", message)

	select {
	case event := <-p.Events():
		assert.Equal(t, ports.PubSubWhisper, event.Kind)
		require.NotNil(t, event.Whisper)
		assert.Equal(t, "41", event.Whisper.MessageID)
		assert.Equal(t, "22484632", event.Whisper.UserID)
		assert.Equal(t, "forsen", event.Whisper.Login)
		assert.Equal(t, "psst", event.Whisper.Message)
		assert.Equal(t, "100", event.Whisper.RecipientID)
	default:
		t.Fatal("no event dispatched")
	}
}

func TestPubSub_DispatchIgnoresOtherTypes(t *testing.T) {
	p := newTestPubSub()
	p.topics["community-points-channel-v1.1"] = "pajlada"

	p.dispatch("community-points-channel-v1.1", `{"type":"reward-updated","data":{}}`)
	p.dispatch("whispers.100", `{"type":"thread","data_object":{}}`)

	select {
	case <-p.Events():
		t.Fatal("event dispatched for ignored payload type")
	default:
	}
}
