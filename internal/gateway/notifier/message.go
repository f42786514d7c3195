package notifier

import (
	"strings"
	"time"
)

const maxMessageLen = 3800

// Section is one titled block of bullet lines.
type Section struct {
	Title string
	Lines []string
}

// Message is the common layout for position alerts.
type Message struct {
	Icon      string
	Title     string
	Sections  []Section
	Footer    string
	Timestamp time.Time
}

// RenderMarkdown renders the message for Telegram's Markdown mode, body in a code block.
func (m Message) RenderMarkdown() string {
	var b strings.Builder
	if header := strings.TrimSpace(m.Icon + " " + m.Title); header != "" {
		b.WriteString(header + "\n\n")
	}
	var body strings.Builder
	for _, sec := range m.Sections {
		lines := nonEmpty(sec.Lines)
		if len(lines) == 0 {
			continue
		}
		if body.Len() > 0 {
			body.WriteString("\n")
		}
		if title := strings.TrimSpace(sec.Title); title != "" {
			body.WriteString(escapeFence(title) + "\n")
		}
		for _, line := range lines {
			body.WriteString("- " + escapeFence(line) + "\n")
		}
	}
	if body.Len() > 0 {
		b.WriteString("```\n" + body.String() + "```\n\n")
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString(escapeFence(footer) + "\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("Time: " + m.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	out := strings.TrimSpace(b.String())
	if len(out) > maxMessageLen {
		out = out[:maxMessageLen] + "..."
	}
	return out
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := strings.TrimSpace(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func escapeFence(s string) string {
	return strings.ReplaceAll(s, "```", "'''")
}
