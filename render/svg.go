package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/projecteru2/ovxview/types"
)

// ParseSVG returns the center of every identified group in a layout
// document: the ellipse center for switches and the bounding box center of
// the polygon for hosts. Coordinates are the document's own, before any
// group transform.
func ParseSVG(doc []byte) (map[string]types.Point, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	out := map[string]types.Point{}
	var groups []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse layout document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "g":
				groups = append(groups, attr(t, "id"))
			case "ellipse", "polygon":
				if len(groups) == 0 {
					continue
				}
				id := groups[len(groups)-1]
				if id == "" {
					continue
				}
				if _, seen := out[id]; seen {
					continue
				}
				if pt, ok := center(t); ok {
					out[id] = pt
				}
			}
		case xml.EndElement:
			if t.Name.Local == "g" && len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
		}
	}
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func center(e xml.StartElement) (types.Point, bool) {
	if e.Name.Local == "ellipse" {
		cx, err1 := strconv.ParseFloat(attr(e, "cx"), 64)
		cy, err2 := strconv.ParseFloat(attr(e, "cy"), 64)
		return types.Point{X: cx, Y: cy}, err1 == nil && err2 == nil
	}
	var minX, minY, maxX, maxY float64
	n := 0
	for _, pair := range strings.Fields(attr(e, "points")) {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			continue
		}
		x, err1 := strconv.ParseFloat(xs, 64)
		y, err2 := strconv.ParseFloat(ys, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if n == 0 || x < minX {
			minX = x
		}
		if n == 0 || x > maxX {
			maxX = x
		}
		if n == 0 || y < minY {
			minY = y
		}
		if n == 0 || y > maxY {
			maxY = y
		}
		n++
	}
	return types.Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}, n > 0
}

// FlowPathLines builds the polyline of every flow path: source host, the
// switches on the path, destination host. Paths whose hosts were not drawn
// are skipped; switches that were not drawn are left out of the line.
func FlowPathLines(view types.View, paths types.FlowPaths, pos map[string]types.Point) map[string][]types.Point {
	out := make(map[string][]types.Point, len(paths))
	for key, dpids := range paths {
		src, dst, ok := strings.Cut(key, "-")
		if !ok {
			continue
		}
		from, ok1 := pos[types.HostElementID(view, src)]
		to, ok2 := pos[types.HostElementID(view, dst)]
		if !ok1 || !ok2 {
			continue
		}
		line := []types.Point{from}
		for _, dpid := range dpids {
			if pt, ok := pos[types.SwitchElementID(view, dpid)]; ok {
				line = append(line, pt)
			}
		}
		out[types.FlowPathElementID(view, key)] = append(line, to)
	}
	return out
}
