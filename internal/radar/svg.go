package radar

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const fontFamily = `"Inter", "Helvetica Neue", Arial, sans-serif`

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func pointList(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// RenderSVG paints a scene as a standalone SVG document.
func RenderSVG(scene Scene) []byte {
	var b bytes.Buffer
	size := num(scene.Size)
	c := num(scene.Size / 2)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" role="img" aria-label="Radar chart">`, size, size, size, size)

	b.WriteString("<defs>")
	for si, s := range scene.Series {
		for ei, e := range s.Edges {
			fmt.Fprintf(&b, `<linearGradient id="edge-%d-%d" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient>`,
				si, ei, num(e.From.X), num(e.From.Y), num(e.To.X), num(e.To.Y), escape(e.FromColor), escape(e.ToColor))
		}
		for wi, w := range s.Wedges {
			fmt.Fprintf(&b, `<radialGradient id="weak-%d-%d" gradientUnits="userSpaceOnUse" cx="0" cy="0" r="%s"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></radialGradient>`,
				si, wi, num(scene.Radius), escape(w.Inner), escape(w.Outer))
		}
	}
	b.WriteString("</defs>")

	fmt.Fprintf(&b, `<g transform="translate(%s %s)">`, c, c)
	for _, ring := range scene.Rings {
		fmt.Fprintf(&b, `<polygon points="%s" fill="none" stroke="%s" stroke-width="1"/>`, pointList(ring), escape(scene.Palette.Ring))
	}
	for _, sp := range scene.Spokes {
		fmt.Fprintf(&b, `<line x1="0" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`, num(sp.X), num(sp.Y), escape(scene.Palette.Spoke))
	}

	for si, s := range scene.Series {
		if len(s.Points) == 0 {
			continue
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s" stroke="none"/>`, pointList(s.Points), escape(s.Fill))
		for wi, w := range s.Wedges {
			fmt.Fprintf(&b, `<polygon points="%s" fill="url(#weak-%d-%d)"/>`, pointList(w.Polygon), si, wi)
		}
		if len(s.Edges) > 0 {
			for ei, e := range s.Edges {
				fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="url(#edge-%d-%d)" stroke-width="%s" stroke-linecap="round"/>`,
					num(e.From.X), num(e.From.Y), num(e.To.X), num(e.To.Y), si, ei, num(s.Width))
			}
			continue
		}
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="4 3"`
		}
		fmt.Fprintf(&b, `<polygon points="%s" fill="none" stroke="%s" stroke-width="%s"%s/>`, pointList(s.Points), escape(s.Stroke), num(s.Width), dash)
	}

	for _, g := range scene.Gaps {
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s" stroke="none"/>`, pointList(g.Polygon), escape(WithAlpha(g.Color, 0.35)))
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="3" fill="%s"/>`, num(g.Dot.X), num(g.Dot.Y), escape(g.Color))
	}

	for _, l := range scene.Labels {
		if l.IconHref != "" {
			fmt.Fprintf(&b, `<image href="%s" x="%s" y="%s" width="%s" height="%s"><title>%s</title></image>`,
				escape(l.IconHref), num(l.Position.X-IconSize/2), num(l.Position.Y-IconSize/2), num(IconSize), num(IconSize), escape(l.Text))
			continue
		}
		startY := -float64(len(l.Lines)-1) * LineHeight / 2
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="%s" dominant-baseline="middle" fill="%s" font-size="%s" font-family="%s">`,
			num(l.Position.X), num(l.Position.Y), l.Anchor, escape(scene.Palette.Label), num(FontSize), escape(fontFamily))
		for i, line := range l.Lines {
			fmt.Fprintf(&b, `<tspan x="%s" y="%s">%s</tspan>`, num(l.Position.X), num(l.Position.Y+startY+float64(i)*LineHeight), escape(line))
		}
		b.WriteString("</text>")
	}
	b.WriteString("</g></svg>")
	return b.Bytes()
}
