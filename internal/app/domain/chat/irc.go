package chat

import "strings"

// IRCMessage is a single parsed wire line. Tag values are unescaped.
type IRCMessage struct {
	Raw     string
	Tags    map[string]string
	Prefix  string
	Command string
	Params  []string
}

func (m *IRCMessage) Tag(key string) string {
	if m == nil || m.Tags == nil {
		return ""
	}
	return m.Tags[key]
}

// Param returns the nth parameter or "" when absent.
func (m *IRCMessage) Param(n int) string {
	if m == nil || n >= len(m.Params) {
		return ""
	}
	return m.Params[n]
}

// ChannelParam strips the leading '#' from the first parameter.
func (m *IRCMessage) ChannelParam() string {
	return strings.TrimPrefix(m.Param(0), "#")
}

// Nick extracts the sender login from the message prefix.
func (m *IRCMessage) Nick() string {
	if m == nil || m.Prefix == "" {
		return ""
	}
	if idx := strings.IndexByte(m.Prefix, '!'); idx != -1 {
		return m.Prefix[:idx]
	}
	return m.Prefix
}

// ParseIRC parses a raw IRC line into tags, prefix, command and params.
func ParseIRC(line string) *IRCMessage {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}

	msg := &IRCMessage{Raw: line}

	if line[0] == '@' {
		idx := strings.IndexByte(line, ' ')
		if idx == -1 {
			return nil
		}
		msg.Tags = parseTags(line[1:idx])
		line = line[idx+1:]
	}

	if len(line) > 0 && line[0] == ':' {
		idx := strings.IndexByte(line, ' ')
		if idx == -1 {
			return nil
		}
		msg.Prefix = line[1:idx]
		line = line[idx+1:]
	}

	if trailing := strings.Index(line, " :"); trailing != -1 {
		msg.Params = strings.Fields(line[:trailing])
		msg.Params = append(msg.Params, line[trailing+2:])
	} else {
		msg.Params = strings.Fields(line)
	}

	if len(msg.Params) == 0 {
		return nil
	}
	msg.Command = msg.Params[0]
	msg.Params = msg.Params[1:]

	return msg
}

func parseTags(rawTags string) map[string]string {
	tags := make(map[string]string)
	start := 0
	for i := 0; i <= len(rawTags); i++ {
		if i == len(rawTags) || rawTags[i] == ';' {
			tag := rawTags[start:i]
			if tag != "" {
				if eq := strings.IndexByte(tag, '='); eq != -1 {
					tags[tag[:eq]] = unescapeTag(tag[eq+1:])
				} else {
					tags[tag] = ""
				}
			}
			start = i + 1
		}
	}
	return tags
}

func unescapeTag(v string) string {
	if !strings.ContainsRune(v, '\\') {
		return v
	}

	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] != '\\' || i == len(v)-1 {
			b.WriteByte(v[i])
			continue
		}
		i++
		switch v[i] {
		case ':':
			b.WriteByte(';')
		case 's':
			b.WriteByte(' ')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(v[i])
		}
	}
	return b.String()
}
