package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks every line of text at spaces so no line exceeds width
// display cells. Words wider than width are split. Existing line breaks and
// leading indentation are kept.
func wrapText(text string, width int) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if width <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

// Wrap is wrapText joined back into one string.
func Wrap(text string, width int) string {
	return strings.Join(wrapText(text, width), "\n")
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	if runewidth.StringWidth(indent) >= width/2 {
		indent = ""
	}

	var out []string
	var cur strings.Builder
	cur.WriteString(indent)
	curWidth := runewidth.StringWidth(indent)
	fresh := true
	flush := func() {
		out = append(out, strings.TrimRight(cur.String(), " "))
		cur.Reset()
		cur.WriteString(indent)
		curWidth = runewidth.StringWidth(indent)
		fresh = true
	}

	for _, word := range strings.Fields(trimmed) {
		wordWidth := runewidth.StringWidth(word)
		sep := 1
		if fresh {
			sep = 0
		}
		if !fresh && curWidth+sep+wordWidth > width {
			flush()
			sep = 0
		}
		for curWidth+sep+wordWidth > width {
			// Split a word that cannot fit on an empty line.
			room := width - curWidth
			if room <= 0 {
				flush()
				continue
			}
			head := runewidth.Truncate(word, room, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			cur.WriteString(head)
			word = word[len(head):]
			wordWidth = runewidth.StringWidth(word)
			flush()
		}
		if word == "" {
			continue
		}
		if sep == 1 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
		curWidth += sep + wordWidth
		fresh = false
	}
	if !fresh {
		flush()
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}
