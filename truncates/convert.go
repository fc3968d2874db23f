package truncates

import (
	"strings"

	"github.com/reusee/itera/contexts"
)

// FromMessages wraps plain transcript messages into single-block truncation
// messages. System content anchors to its head with a larger floor so the
// formatting rules survive; conversation turns keep their head too.
func FromMessages(msgs []contexts.Message) []Message {
	ret := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		floor := 16
		if msg.Role == contexts.RoleSystem {
			floor = 256
		}
		ret = append(ret, Message{
			Role: msg.Role,
			Blocks: []Block{
				{
					Text:      msg.Content,
					Anchor:    AnchorTop,
					MinTokens: floor,
				},
			},
		})
	}
	return ret
}

// ToMessages joins blocks back into transcript messages, dropping any whose
// trimmed content is empty.
func ToMessages(msgs []Message) []contexts.Message {
	ret := make([]contexts.Message, 0, len(msgs))
	for _, msg := range msgs {
		var sb strings.Builder
		for i, block := range msg.Blocks {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(block.Text)
		}
		content := sb.String()
		if strings.TrimSpace(content) == "" {
			continue
		}
		ret = append(ret, contexts.Message{
			Role:    msg.Role,
			Content: content,
		})
	}
	return ret
}
