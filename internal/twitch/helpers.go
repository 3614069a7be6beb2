package twitch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/doomercreatine/MasterCasketBot/internal/game"
)

func comma(v int64) string {
	return humanize.Comma(v)
}

// mentions - "@name1 @name2"
func mentions(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "@" + n
	}
	return strings.Join(out, " ")
}

// winsSummary - "name1 3 win(s) | name2 1 win(s)"
func winsSummary(winners []string, wins map[string]int) string {
	out := make([]string, len(winners))
	for i, n := range winners {
		out[i] = fmt.Sprintf("%s %d win(s)", n, wins[n])
	}
	return strings.Join(out, " | ")
}

// parseEmoteSpans разбирает IRC-тег emotes вида
// "25:0-4,12-16/1902:6-10" в позиции рун (включительно).
func parseEmoteSpans(tag string) []game.Span {
	var spans []game.Span
	for _, group := range strings.Split(tag, "/") {
		if group == "" {
			continue
		}
		parts := strings.SplitN(group, ":", 2)
		if len(parts) != 2 {
			continue
		}
		for _, rng := range strings.Split(parts[1], ",") {
			bounds := strings.SplitN(rng, "-", 2)
			if len(bounds) != 2 {
				continue
			}
			start, err := strconv.Atoi(bounds[0])
			if err != nil {
				continue
			}
			end, err := strconv.Atoi(bounds[1])
			if err != nil {
				continue
			}
			spans = append(spans, game.Span{Start: start, End: end})
		}
	}
	return spans
}
