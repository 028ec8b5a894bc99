package models

// Coordinate is a (longitude, latitude) pair, the order map libraries expect.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// MatchKind tells which resolution step produced a coordinate.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchFuzzy    MatchKind = "fuzzy"
	MatchFallback MatchKind = "fallback"
)

// Bounds is the rectangle enclosing a set of coordinates.
type Bounds struct {
	SouthWest Coordinate `json:"south_west"`
	NorthEast Coordinate `json:"north_east"`
}

// Extend grows b to include c.
func (b Bounds) Extend(c Coordinate) Bounds {
	if c.Lon < b.SouthWest.Lon {
		b.SouthWest.Lon = c.Lon
	}
	if c.Lat < b.SouthWest.Lat {
		b.SouthWest.Lat = c.Lat
	}
	if c.Lon > b.NorthEast.Lon {
		b.NorthEast.Lon = c.Lon
	}
	if c.Lat > b.NorthEast.Lat {
		b.NorthEast.Lat = c.Lat
	}
	return b
}

// Place is an entry of the points-of-interest catalogue.
type Place struct {
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
	ImageURL   string     `json:"image_url"`
}

// ResolvedMarker is one positioned, styled activity on the map. It is
// rebuilt on every render pass and never persisted.
type ResolvedMarker struct {
	Day        int        `json:"day"`
	DayIndex   int        `json:"day_index"`
	Label      string     `json:"label"`
	Color      string     `json:"color"`
	Coordinate Coordinate `json:"coordinate"`
	Popup      string     `json:"popup"`
	Title      string     `json:"title"`
	Time       string     `json:"time"`
	Location   string     `json:"location"`
	Match      MatchKind  `json:"match"`
}

// TileLayer describes the base layer the client loads.
type TileLayer struct {
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// MapView is the rendered state of a map instance.
type MapView struct {
	Center     Coordinate       `json:"center"`
	Zoom       float64          `json:"zoom"`
	TileLayers []TileLayer      `json:"tile_layers"`
	Markers    []ResolvedMarker `json:"markers"`
	Bounds     *Bounds          `json:"bounds,omitempty"`
	Padding    int              `json:"padding,omitempty"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
}
