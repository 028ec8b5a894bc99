package mapview

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// Surface is the area a map is drawn into.
type Surface interface {
	Measure() (width, height int, err error)
}

// Viewport is a surface of known pixel size, typically the client's map
// container as reported in the request.
type Viewport struct {
	Width  int
	Height int
}

// Measure implements Surface. A zero or negative size means the container is
// absent.
func (v Viewport) Measure() (int, int, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0, fmt.Errorf("viewport %dx%d: %w", v.Width, v.Height, models.ErrRenderSurfaceMissing)
	}
	return v.Width, v.Height, nil
}

// Engine creates map instances once its dependencies are loaded.
type Engine interface {
	Load(ctx context.Context) error
	NewMap(width, height int, center models.Coordinate, zoom float64) (Map, error)
}

// Map is a live map instance. Remove releases it; a removed map must not be
// used again.
type Map interface {
	AddTileLayer(layer models.TileLayer)
	AddMarker(marker models.ResolvedMarker)
	FitBounds(bounds models.Bounds, padding int)
	View() models.MapView
	Remove()
}

// ViewEngine builds maps as serialisable views that the browser client draws
// verbatim.
type ViewEngine struct {
	tiles models.TileLayer
}

// NewViewEngine returns an engine serving the given base layer.
func NewViewEngine(tiles models.TileLayer) *ViewEngine {
	return &ViewEngine{tiles: tiles}
}

// Load checks that the tile layer is addressable with z/x/y coordinates.
func (e *ViewEngine) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ValidateTileTemplate(e.tiles.URLTemplate)
}

// NewMap implements Engine.
func (e *ViewEngine) NewMap(width, height int, center models.Coordinate, zoom float64) (Map, error) {
	return &viewMap{view: models.MapView{
		Center:     center,
		Zoom:       zoom,
		Width:      width,
		Height:     height,
		TileLayers: []models.TileLayer{},
		Markers:    []models.ResolvedMarker{},
	}}, nil
}

// ValidateTileTemplate reports an ErrDependencyLoad when template is not an
// http(s) URL with {z}, {x} and {y} placeholders.
func ValidateTileTemplate(template string) error {
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(template, p) {
			return fmt.Errorf("tile template %q lacks %s: %w", template, p, models.ErrDependencyLoad)
		}
	}
	r := strings.NewReplacer("{s}", "a", "{z}", "0", "{x}", "0", "{y}", "0", "{r}", "")
	u, err := url.Parse(r.Replace(template))
	if err != nil {
		return fmt.Errorf("tile template %q: %v: %w", template, err, models.ErrDependencyLoad)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("tile template %q is not an http url: %w", template, models.ErrDependencyLoad)
	}
	return nil
}

type viewMap struct {
	mu      sync.Mutex
	view    models.MapView
	removed bool
}

func (m *viewMap) AddTileLayer(layer models.TileLayer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.removed {
		m.view.TileLayers = append(m.view.TileLayers, layer)
	}
}

func (m *viewMap) AddMarker(marker models.ResolvedMarker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.removed {
		m.view.Markers = append(m.view.Markers, marker)
	}
}

func (m *viewMap) FitBounds(bounds models.Bounds, padding int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed {
		return
	}
	b := bounds
	m.view.Bounds = &b
	m.view.Padding = padding
	m.view.Center = models.Coordinate{
		Lon: (bounds.SouthWest.Lon + bounds.NorthEast.Lon) / 2,
		Lat: (bounds.SouthWest.Lat + bounds.NorthEast.Lat) / 2,
	}
}

func (m *viewMap) View() models.MapView {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.view
	v.TileLayers = make([]models.TileLayer, len(m.view.TileLayers))
	copy(v.TileLayers, m.view.TileLayers)
	v.Markers = make([]models.ResolvedMarker, len(m.view.Markers))
	copy(v.Markers, m.view.Markers)
	if m.view.Bounds != nil {
		b := *m.view.Bounds
		v.Bounds = &b
	}
	return v
}

func (m *viewMap) Remove() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = true
}

// MarkerBounds returns the rectangle enclosing all markers. ok is false for an
// empty slice.
func MarkerBounds(markers []models.ResolvedMarker) (models.Bounds, bool) {
	if len(markers) == 0 {
		return models.Bounds{}, false
	}
	first := markers[0].Coordinate
	b := models.Bounds{SouthWest: first, NorthEast: first}
	for _, m := range markers[1:] {
		b = b.Extend(m.Coordinate)
	}
	return b, true
}
