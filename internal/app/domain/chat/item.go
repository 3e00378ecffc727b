package chat

// ChatItem wraps a message with its presentation flags. Tag is a revision
// counter bumped on every in-place replacement so consumers can detect
// mutation without comparing message contents.
type ChatItem struct {
	Message      Message
	IsMentionTab bool
	IsCleared    bool
	Tag          int
}

func NewItem(msg Message) ChatItem {
	return ChatItem{Message: msg}
}

func NewMentionItem(msg Message) ChatItem {
	return ChatItem{Message: msg, IsMentionTab: true}
}

// WithMessage replaces the wrapped message in place, bumping the revision.
func (c ChatItem) WithMessage(msg Message) ChatItem {
	c.Message = msg
	c.Tag++
	return c
}

// Cleared marks the item redacted, bumping the revision.
func (c ChatItem) Cleared() ChatItem {
	if priv, ok := c.Message.(*PrivMessage); ok {
		timedOut := *priv
		timedOut.TimedOut = true
		c.Message = &timedOut
	}
	c.IsCleared = true
	c.Tag++
	return c
}
