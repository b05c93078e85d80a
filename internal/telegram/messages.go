package telegram

import (
	"fmt"
	"strings"

	"github.com/user/gitfeed/internal/feed"
	"github.com/user/gitfeed/internal/storage"
)

// MessageBuilder helps construct MarkdownV2 messages about events.
type MessageBuilder struct {
	zone feed.Zone
}

// NewMessageBuilder creates a new message builder rendering times in zone.
func NewMessageBuilder(zone feed.Zone) *MessageBuilder {
	return &MessageBuilder{zone: zone}
}

// BuildEventMessage creates a notification message for a stored event.
func (m *MessageBuilder) BuildEventMessage(e storage.Event) string {
	return describe(string(e.Action), e.Author, e.FromBranch, e.ToBranch, m.zone.Format(e.Timestamp))
}

// BuildFeedMessage lists already formatted feed entries.
func (m *MessageBuilder) BuildFeedMessage(events []feed.DisplayEvent) string {
	if len(events) == 0 {
		return "📭 No recent activity"
	}

	var b strings.Builder
	b.WriteString("📋 *Recent activity*\n")
	for _, e := range events {
		b.WriteString("\n")
		b.WriteString(describe(e.Action, e.Author, e.FromBranch, e.ToBranch, e.Timestamp))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func describe(action, author, from, to, timestamp string) string {
	switch storage.Action(action) {
	case storage.ActionPush:
		return fmt.Sprintf("🔨 *%s* pushed to `%s`\n🕒 %s",
			escapeMarkdown(author), escapeCode(to), escapeMarkdown(timestamp))
	case storage.ActionPullRequest:
		return fmt.Sprintf("🔀 *%s* submitted a pull request from `%s` to `%s`\n🕒 %s",
			escapeMarkdown(author), escapeCode(from), escapeCode(to), escapeMarkdown(timestamp))
	default:
		return fmt.Sprintf("📌 *%s* %s\n🕒 %s",
			escapeMarkdown(author), escapeMarkdown(action), escapeMarkdown(timestamp))
	}
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// escapeMarkdown escapes MarkdownV2 special characters outside code spans.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeCode escapes the characters MarkdownV2 reserves inside code spans.
func escapeCode(s string) string {
	return strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(s)
}
