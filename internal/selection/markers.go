package selection

import "github.com/perspectr/perspectr/internal/network"

// Marker glyphs and colors.
const (
	SelfGlyph  = "👽"
	SelfColor  = "rgba(66, 248, 26, 0.8)"
	OtherGlyph = "🌟"
	OtherColor = "rgba(0, 255, 255, 0.6)"
)

// Marker is the rendering style of one node.
type Marker struct {
	Index int    `json:"index"`
	Self  bool   `json:"self"`
	Glyph string `json:"glyph"`
	Color string `json:"color"`
}

// Markers derives one marker per node. A node is the viewer's own when its
// email matches viewerEmail; an empty viewerEmail matches nothing.
func Markers(nodes []network.Node, viewerEmail string) []Marker {
	out := make([]Marker, len(nodes))
	for i, n := range nodes {
		if IsSelf(n, viewerEmail) {
			out[i] = Marker{Index: i, Self: true, Glyph: SelfGlyph, Color: SelfColor}
		} else {
			out[i] = Marker{Index: i, Glyph: OtherGlyph, Color: OtherColor}
		}
	}
	return out
}

// IsSelf reports whether n belongs to the viewer.
func IsSelf(n network.Node, viewerEmail string) bool {
	return viewerEmail != "" && n.Email == viewerEmail
}
