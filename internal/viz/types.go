// Package viz renders a viewer's network as a standalone interactive HTML page.
package viz

import (
	"net/url"

	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/profile"
	"github.com/perspectr/perspectr/internal/selection"
	"github.com/perspectr/perspectr/internal/view"
	"github.com/perspectr/perspectr/internal/viewport"
)

// PlotData contains all data needed to render the page.
type PlotData struct {
	Points []Point       `json:"points"`
	Range  viewport.Rect `json:"range"`

	// SelectedIndex is the point whose panel opens on load, or -1.
	SelectedIndex int `json:"selectedIndex"`
}

// Point is one plotted node.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Panel fields
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Instagram         string `json:"instagram,omitempty"`
	InstagramUsername string `json:"instagramUsername,omitempty"`
	Discord           string `json:"discord,omitempty"`
	Degraded          bool   `json:"degraded,omitempty"`

	// Marker
	Self  bool   `json:"self"`
	Glyph string `json:"glyph"`
	Color string `json:"color"`
}

// IsEmpty returns true if there is nothing to plot.
func (d *PlotData) IsEmpty() bool {
	return len(d.Points) == 0
}

// BuildPlotData converts a session state into plot data.
func BuildPlotData(st view.State) *PlotData {
	data := NewPlotData(st.Nodes, st.Viewer.Email, st.Rect)
	if st.Selected != nil {
		for i, n := range st.Nodes {
			if n.ID == st.Selected.ID {
				data.SelectedIndex = i
				break
			}
		}
	}
	return data
}

// NewPlotData builds plot data for nodes shown in rect.
func NewPlotData(nodes []network.Node, viewerEmail string, rect viewport.Rect) *PlotData {
	markers := selection.Markers(nodes, viewerEmail)
	points := make([]Point, len(nodes))
	for i, n := range nodes {
		p := Point{
			X:        n.X,
			Y:        n.Y,
			Name:     n.Name,
			Email:    n.Email,
			Discord:  n.Discord,
			Degraded: n.Degraded,
			Self:     markers[i].Self,
			Glyph:    markers[i].Glyph,
			Color:    markers[i].Color,
		}
		if n.Instagram != "" {
			p.InstagramUsername = profile.InstagramUsername(n.Instagram)
			p.Instagram = instagramLink(n.Instagram, p.InstagramUsername)
		}
		points[i] = p
	}
	return &PlotData{Points: points, Range: rect, SelectedIndex: -1}
}

// instagramLink returns raw when it is an http(s) URL. Anything else ends up
// in an href, so it is rebuilt as a profile URL from the username.
func instagramLink(raw, username string) string {
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return raw
	}
	return profile.InstagramURL(url.PathEscape(username))
}
