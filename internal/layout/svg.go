// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"bufio"
	"fmt"
	"html"
	"io"
)

// RenderSVG writes sc as a standalone SVG document.
func RenderSVG(sc Scene, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#0a0e17"/>`+"\n")

	bw.WriteString(`<g stroke="#5b6b7f" stroke-opacity="0.6" stroke-width="1.2">` + "\n")
	for _, e := range sc.Edges {
		fmt.Fprintf(bw, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
			e.From.X, e.From.Y, e.To.X, e.To.Y)
	}
	bw.WriteString("</g>\n")

	for _, n := range sc.Nodes {
		id := html.EscapeString(n.ID)
		fill := "#2DB682"
		if n.Pinned {
			fill = "#E07C3A"
		}
		switch n.Shape {
		case Dot:
			fmt.Fprintf(bw, `<circle data-id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>%s</title></circle>`+"\n",
				id, n.Center.X, n.Center.Y, n.Size.X/2, fill, html.EscapeString(n.Label))
		default:
			x := n.Center.X - n.Size.X/2
			y := n.Center.Y - n.Size.Y/2
			fmt.Fprintf(bw, `<g data-id="%s"><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`,
				id, x, y, n.Size.X, n.Size.Y, n.Size.Y/2, fill)
			fmt.Fprintf(bw, `<text x="%.2f" y="%.2f" font-size="%.2f" font-family="monospace" fill="#0a0e17" text-anchor="middle" dominant-baseline="central">%s</text></g>`+"\n",
				n.Center.X, n.Center.Y, n.Font, html.EscapeString(n.Label))
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
