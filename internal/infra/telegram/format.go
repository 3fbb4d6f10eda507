package telegram

import (
	"fmt"
	"html"
	"strings"

	"oftheday_display/internal/app"
	"oftheday_display/internal/domain/ofday"
)

// formatFrame renders a frame as Telegram HTML.
func formatFrame(f ofday.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> · day %d\n", html.EscapeString(f.CategoryDisplayName), f.DayOfYear)
	b.WriteString("<b>" + html.EscapeString(f.Title) + "</b>")
	if f.Choice != ofday.ChoiceTitleOnly && f.ShownText != "" {
		b.WriteString("\n" + html.EscapeString(f.ShownText))
	}
	return b.String()
}

func formatToday(day int, entries []app.TodayEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Day %d</b>\n", day)
	for _, e := range entries {
		name := html.EscapeString(e.Category.DisplayName)
		switch {
		case e.Err != nil:
			fmt.Fprintf(&b, "\n<b>%s</b>: unavailable", name)
		case e.Record.IsEmpty():
			fmt.Fprintf(&b, "\n<b>%s</b>: nothing today", name)
		default:
			fmt.Fprintf(&b, "\n<b>%s</b>: %s", name, html.EscapeString(e.Record.Title))
			if s := strings.TrimSpace(e.Record.Subtitle); s != "" {
				fmt.Fprintf(&b, " (%s)", html.EscapeString(s))
			}
		}
	}
	return b.String()
}
