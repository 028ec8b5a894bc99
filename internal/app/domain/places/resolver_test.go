package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

func assertNearCenter(t *testing.T, center, got models.Coordinate) {
	t.Helper()
	assert.InDelta(t, center.Lon, got.Lon, FallbackJitter)
	assert.InDelta(t, center.Lat, got.Lat, FallbackJitter)
}

func TestResolveExactMatchesReturnTableCoordinate(t *testing.T) {
	r := NewResolver(WithSeed(1))
	for _, p := range Catalogue() {
		t.Run(p.Name, func(t *testing.T) {
			got, kind := r.Resolve(p.Name)
			assert.Equal(t, p.Coordinate, got)
			assert.Equal(t, models.MatchExact, kind)
		})
	}
}

func TestResolveFuzzy(t *testing.T) {
	r := NewResolver(WithSeed(1))
	vashi := Catalogue()[indexOf(t, "Vashi")].Coordinate

	tests := []struct {
		name     string
		location string
		want     string
	}{
		{name: "key inside input", location: "Sagar Vihar, vashi sector 8", want: "Vashi"},
		{name: "upper case input", location: "KHARGHAR", want: "Kharghar"},
		{name: "input inside key", location: "belapur", want: "CBD Belapur"},
		{name: "specific place before area", location: "Inorbit Mall, Vashi", want: "Inorbit Mall"},
		{name: "surrounding spaces", location: "  Nerul  ", want: "Nerul"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, kind := r.Resolve(tc.location)
			assert.Equal(t, models.MatchFuzzy, kind)
			assert.Equal(t, Catalogue()[indexOf(t, tc.want)].Coordinate, got)
		})
	}

	got, _ := r.Resolve("vashi")
	assert.Equal(t, vashi, got)
}

func TestLookupKeepsSurroundingWhitespace(t *testing.T) {
	r := NewResolver(WithSeed(1))

	// "cbd belapur" does not contain "belapur " and vice versa.
	_, kind, ok := r.Lookup("belapur ")
	assert.False(t, ok)
	assert.Equal(t, models.MatchFallback, kind)

	i, kind, ok := r.Lookup("vAsHi")
	require.True(t, ok)
	assert.Equal(t, models.MatchFuzzy, kind)
	assert.Equal(t, "Vashi", Catalogue()[i].Name)

	for _, blank := range []string{"", " ", "\t\n"} {
		_, kind, ok := r.Lookup(blank)
		assert.False(t, ok, "%q", blank)
		assert.Equal(t, models.MatchFallback, kind)
	}
}

func TestResolveFirstMatchInTableOrderWins(t *testing.T) {
	table := []models.Place{
		{Name: "Mumbai", Coordinate: models.Coordinate{Lon: 72.87, Lat: 19.07}},
		{Name: "Navi Mumbai", Coordinate: models.Coordinate{Lon: 73.02, Lat: 19.03}},
	}
	r := NewResolver(WithPlaces(table), WithSeed(3))

	got, kind := r.Resolve("navi mumbai station")
	assert.Equal(t, models.MatchFuzzy, kind)
	assert.Equal(t, table[0].Coordinate, got)
}

func TestResolveFallbackStaysNearCenter(t *testing.T) {
	r := NewResolver(WithSeed(42))

	for _, loc := range []string{"Unknown Place", "", "   ", "Atlantis"} {
		for i := 0; i < 200; i++ {
			got, kind := r.Resolve(loc)
			require.Equal(t, models.MatchFallback, kind, "location %q", loc)
			assertNearCenter(t, DefaultCenter, got)
		}
	}
}

func TestResolveFallbackVariesPerCall(t *testing.T) {
	r := NewResolver(WithSeed(7))
	first, _ := r.Resolve("Unknown Place")
	second, _ := r.Resolve("Unknown Place")
	assert.NotEqual(t, first, second)
}

func TestResolveFallbackIsReproducibleWithSeed(t *testing.T) {
	a, _ := NewResolver(WithSeed(99)).Resolve("nowhere")
	b, _ := NewResolver(WithSeed(99)).Resolve("nowhere")
	assert.Equal(t, a, b)
}

func TestResolveCustomCenter(t *testing.T) {
	center := models.Coordinate{Lon: 10, Lat: 20}
	r := NewResolver(WithCenter(center), WithSeed(5))
	got, _ := r.Resolve("nowhere at all")
	assertNearCenter(t, center, got)
	assert.Equal(t, center, r.Center())
}

func TestImage(t *testing.T) {
	r := NewResolver(WithSeed(1))
	assert.Equal(t, Catalogue()[indexOf(t, "Kharghar")].ImageURL, r.Image("Kharghar hills"))
	assert.Equal(t, DefaultImage, r.Image("Unknown Place"))
	assert.Equal(t, DefaultImage, r.Image(""))
}

func TestCatalogueIsCopied(t *testing.T) {
	c := Catalogue()
	c[0].Name = "changed"
	assert.NotEqual(t, "changed", Catalogue()[0].Name)

	r := NewResolver()
	p := r.Places()
	p[0].Name = "changed"
	assert.NotEqual(t, "changed", r.Places()[0].Name)
}

func indexOf(t *testing.T, name string) int {
	t.Helper()
	for i, p := range Catalogue() {
		if p.Name == name {
			return i
		}
	}
	t.Fatalf("place %q not in catalogue", name)
	return -1
}
