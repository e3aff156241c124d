package radar

import (
	"strings"
	"unicode/utf8"
)

const maxLabelLine = 12

// anchorEpsilon keeps labels on the vertical axis centred despite float noise.
const anchorEpsilon = 1e-6

// Anchor is the SVG text-anchor of a label.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorEnd    Anchor = "end"
	AnchorMiddle Anchor = "middle"
)

// SplitLabel breaks long names into at most two lines: hyphenated names after
// the second part, otherwise before the last word.
func SplitLabel(text string) []string {
	if utf8.RuneCountInString(text) <= maxLabelLine {
		return []string{text}
	}
	if strings.Contains(text, "-") {
		parts := strings.Split(text, "-")
		first := strings.Join(parts[:2], "-")
		if rest := strings.Join(parts[2:], "-"); rest != "" {
			return []string{first, rest}
		}
		return []string{first}
	}
	if strings.Contains(text, " ") {
		parts := strings.Split(text, " ")
		return []string{strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]}
	}
	return []string{text}
}

func anchorFor(x float64) Anchor {
	switch {
	case x > anchorEpsilon:
		return AnchorStart
	case x < -anchorEpsilon:
		return AnchorEnd
	default:
		return AnchorMiddle
	}
}
