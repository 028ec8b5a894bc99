// Package places resolves free-text activity locations against the static
// Navi Mumbai place catalogue.
package places

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// FallbackJitter bounds the random offset applied on each axis to unresolved
// locations.
const FallbackJitter = 0.01

// Resolver maps free-text locations to coordinates and images. It never fails:
// unknown names land next to the default center.
type Resolver struct {
	places       []models.Place
	lowered      []string
	exact        map[string]int
	center       models.Coordinate
	defaultImage string

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRand sets the random source used for fallback offsets.
func WithRand(r *rand.Rand) Option {
	return func(res *Resolver) { res.rnd = r }
}

// WithSeed makes fallback offsets reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithCenter overrides the anchor used for unresolved locations.
func WithCenter(c models.Coordinate) Option {
	return func(res *Resolver) { res.center = c }
}

// WithPlaces replaces the catalogue. The slice order is the match order.
func WithPlaces(p []models.Place) Option {
	return func(res *Resolver) { res.places = p }
}

// NewResolver builds a resolver over the static catalogue.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		places:       catalogue,
		center:       DefaultCenter,
		defaultImage: DefaultImage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rnd == nil {
		now := uint64(time.Now().UnixNano())
		r.rnd = rand.New(rand.NewPCG(now, now>>7))
	}

	r.lowered = make([]string, len(r.places))
	r.exact = make(map[string]int, len(r.places))
	for i, p := range r.places {
		r.lowered[i] = strings.ToLower(p.Name)
		if _, dup := r.exact[p.Name]; !dup {
			r.exact[p.Name] = i
		}
	}
	return r
}

// Center returns the anchor of unresolved locations.
func (r *Resolver) Center() models.Coordinate { return r.center }

// Places returns the catalogue in match order.
func (r *Resolver) Places() []models.Place {
	out := make([]models.Place, len(r.places))
	copy(out, r.places)
	return out
}

// Lookup returns the index of the catalogue entry matching location, trying an
// exact case-sensitive match first and then a case-insensitive substring match
// in either direction. The first entry in catalogue order wins. The input is
// compared as given apart from case; blank input never matches.
func (r *Resolver) Lookup(location string) (int, models.MatchKind, bool) {
	if i, ok := r.exact[location]; ok {
		return i, models.MatchExact, true
	}

	if strings.TrimSpace(location) == "" {
		return -1, models.MatchFallback, false
	}
	needle := strings.ToLower(location)
	for i, key := range r.lowered {
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return i, models.MatchFuzzy, true
		}
	}
	return -1, models.MatchFallback, false
}

// Resolve returns the coordinate for location and how it was found. Unmatched
// locations get a fresh random point within FallbackJitter of the center on
// every call.
func (r *Resolver) Resolve(location string) (models.Coordinate, models.MatchKind) {
	if i, kind, ok := r.Lookup(location); ok {
		return r.places[i].Coordinate, kind
	}
	return r.jitter(), models.MatchFallback
}

// Image returns the picture for location, or the default image.
func (r *Resolver) Image(location string) string {
	if i, _, ok := r.Lookup(location); ok && r.places[i].ImageURL != "" {
		return r.places[i].ImageURL
	}
	return r.defaultImage
}

func (r *Resolver) jitter() models.Coordinate {
	r.mu.Lock()
	dLon := (r.rnd.Float64()*2 - 1) * FallbackJitter
	dLat := (r.rnd.Float64()*2 - 1) * FallbackJitter
	r.mu.Unlock()
	return models.Coordinate{Lon: r.center.Lon + dLon, Lat: r.center.Lat + dLat}
}
