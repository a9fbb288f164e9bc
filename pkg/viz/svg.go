package viz

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const svgBackground = "#0f172a"

// SVGCanvas implements Canvas by emitting an SVG document. It backs the
// server-side snapshot endpoint: the same renderer that drives the browser
// canvas draws a static image here.
type SVGCanvas struct {
	body          strings.Builder
	width, height float64
	transformed   bool
	gradientSeq   int
	gradientDefs  strings.Builder
}

// NewSVGCanvas returns an empty SVG surface.
func NewSVGCanvas() *SVGCanvas {
	return &SVGCanvas{}
}

func (c *SVGCanvas) Clear(width, height float64) {
	c.body.Reset()
	c.gradientDefs.Reset()
	c.gradientSeq = 0
	c.transformed = false
	c.width, c.height = width, height

	fmt.Fprintf(&c.body,
		`<rect x="0" y="0" width="%g" height="%g" fill="%s"/>`+"\n",
		width, height, svgBackground)
}

func (c *SVGCanvas) SetTransform(scale, offsetX, offsetY float64) {
	c.ResetTransform()
	fmt.Fprintf(&c.body,
		`<g transform="translate(%g %g) scale(%g)">`+"\n",
		offsetX, offsetY, scale)
	c.transformed = true
}

func (c *SVGCanvas) ResetTransform() {
	if c.transformed {
		c.body.WriteString("</g>\n")
		c.transformed = false
	}
}

func (c *SVGCanvas) Line(x1, y1, x2, y2 float64, style LineStyle) {
	fmt.Fprintf(&c.body,
		`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g" stroke-opacity="%g"/>`+"\n",
		x1, y1, x2, y2, style.Color, style.Width, style.Opacity)
}

func (c *SVGCanvas) Circle(x, y, radius float64, style CircleStyle) {
	fill := style.Fill
	if style.GradientCenter != "" && style.Fill != "" {
		c.gradientSeq++
		id := fmt.Sprintf("grad%d", c.gradientSeq)
		fmt.Fprintf(&c.gradientDefs,
			`<radialGradient id="%s"><stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></radialGradient>`+"\n",
			id, style.GradientCenter, style.Fill)
		fill = fmt.Sprintf("url(#%s)", id)
	}
	if fill == "" {
		fill = "none"
	}

	filter := ""
	if style.Shadow {
		filter = ` filter="url(#shadow)"`
	}
	stroke := ""
	if style.Stroke != "" {
		stroke = fmt.Sprintf(` stroke="%s" stroke-width="%g"`, style.Stroke, style.StrokeWidth)
	}

	fmt.Fprintf(&c.body,
		`<circle cx="%g" cy="%g" r="%g" fill="%s"%s%s/>`+"\n",
		x, y, radius, fill, stroke, filter)
}

func (c *SVGCanvas) Text(text string, x, y float64, style TextStyle) {
	weight := "normal"
	if style.Bold {
		weight = "bold"
	}

	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(text))

	fmt.Fprintf(&c.body,
		`<text x="%g" y="%g" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="%g" font-weight="%s" fill="%s">%s</text>`+"\n",
		x, y, style.Size, weight, style.Color, escaped.String())
}

// Document wraps everything drawn since the last Clear in a complete SVG
// document.
func (c *SVGCanvas) Document() string {
	var doc strings.Builder
	fmt.Fprintf(&doc,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		c.width, c.height, c.width, c.height)

	doc.WriteString(`<defs><filter id="shadow" x="-50%" y="-50%" width="200%" height="200%">` +
		`<feDropShadow dx="0" dy="2" stdDeviation="3" flood-opacity="0.4"/></filter>` + "\n")
	doc.WriteString(c.gradientDefs.String())
	doc.WriteString("</defs>\n")

	doc.WriteString(c.body.String())
	if c.transformed {
		doc.WriteString("</g>\n")
	}
	doc.WriteString("</svg>\n")
	return doc.String()
}
