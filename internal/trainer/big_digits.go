package trainer

import "strings"

const glyphHeight = 5

// glyphs is a 5-row block font for the countdown
var glyphs = map[rune][glyphHeight]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", " ███ "},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", "  █  "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	'D': {"████ ", "█   █", "█   █", "█   █", "████ "},
	'O': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'N': {"█   █", "██  █", "█ █ █", "█  ██", "█   █"},
	'E': {"█████", "█    ", "████ ", "█    ", "█████"},
}

// renderBig draws text in the block font. Characters without a glyph are
// rendered as blanks.
func renderBig(text string) string {
	if text == "" {
		return ""
	}
	rows := make([]string, glyphHeight)
	for i, r := range text {
		glyph, ok := glyphs[r]
		for row := 0; row < glyphHeight; row++ {
			if i > 0 {
				rows[row] += " "
			}
			if ok {
				rows[row] += glyph[row]
			} else {
				rows[row] += "     "
			}
		}
	}
	return strings.Join(rows, "\n")
}
