package radar

import (
	"fmt"
	"strconv"
	"strings"
)

// Palette holds the chart colours.
type Palette struct {
	Accent string `json:"accent"`
	Danger string `json:"danger"`
	Muted  string `json:"muted"`
	Ring   string `json:"ring"`
	Spoke  string `json:"spoke"`
	Label  string `json:"label"`
}

// DefaultPalette matches the dark print card.
var DefaultPalette = Palette{
	Accent: "#ffe3a2",
	Danger: "#ed0f94",
	Muted:  "#a1a1a1",
	Ring:   "rgba(255, 255, 255, 0.1)",
	Spoke:  "rgba(255, 255, 255, 0.2)",
	Label:  "rgba(240, 240, 240, 0.78)",
}

func (p Palette) withDefaults() Palette {
	if p.Accent == "" {
		p.Accent = DefaultPalette.Accent
	}
	if p.Danger == "" {
		p.Danger = DefaultPalette.Danger
	}
	if p.Muted == "" {
		p.Muted = DefaultPalette.Muted
	}
	if p.Ring == "" {
		p.Ring = DefaultPalette.Ring
	}
	if p.Spoke == "" {
		p.Spoke = DefaultPalette.Spoke
	}
	if p.Label == "" {
		p.Label = DefaultPalette.Label
	}
	return p
}

// WithAlpha rewrites an rgb(a) or #rrggbb color with the given alpha.
// Unparseable colors fall back to the accent tone.
func WithAlpha(color string, alpha float64) string {
	value := strings.TrimSpace(color)
	a := strconv.FormatFloat(alpha, 'f', -1, 64)
	if strings.HasPrefix(value, "rgb") {
		inner := strings.TrimSuffix(value[strings.IndexByte(value, '(')+1:], ")")
		var nums []string
		for _, chunk := range strings.Split(inner, ",") {
			if _, err := strconv.ParseFloat(strings.TrimSpace(chunk), 64); err == nil {
				nums = append(nums, strings.TrimSpace(chunk))
			}
		}
		if len(nums) >= 3 {
			return fmt.Sprintf("rgba(%s, %s, %s, %s)", nums[0], nums[1], nums[2], a)
		}
	}
	clean := strings.TrimPrefix(value, "#")
	if len(clean) == 6 {
		r, errR := strconv.ParseUint(clean[0:2], 16, 8)
		g, errG := strconv.ParseUint(clean[2:4], 16, 8)
		b, errB := strconv.ParseUint(clean[4:6], 16, 8)
		if errR == nil && errG == nil && errB == nil {
			return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, a)
		}
	}
	return fmt.Sprintf("rgba(255, 227, 162, %s)", a)
}
