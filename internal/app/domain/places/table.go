package places

import "github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"

// DefaultCenter is the center of Navi Mumbai, used for the initial map view
// and as the anchor for unresolved locations.
var DefaultCenter = models.Coordinate{Lon: 73.0297, Lat: 19.0330}

// DefaultImage is shown for activities whose location matches no known place.
const DefaultImage = "https://images.unsplash.com/photo-1570168007204-dfb528c6958f?w=800"

// catalogue is ordered: fuzzy matching returns the first entry that matches,
// so more specific names must come before the areas that contain them.
var catalogue = []models.Place{
	{Name: "Inorbit Mall", Coordinate: models.Coordinate{Lon: 73.0040, Lat: 19.0650}, ImageURL: "https://images.unsplash.com/photo-1519567241046-7f570eee3ce6?w=800"},
	{Name: "Mini Seashore", Coordinate: models.Coordinate{Lon: 72.9980, Lat: 19.0760}, ImageURL: "https://images.unsplash.com/photo-1507525428034-b723cf961d3e?w=800"},
	{Name: "Wonders Park", Coordinate: models.Coordinate{Lon: 73.0165, Lat: 19.0400}, ImageURL: "https://images.unsplash.com/photo-1519331379826-f10be5486c6f?w=800"},
	{Name: "Central Park", Coordinate: models.Coordinate{Lon: 73.0715, Lat: 19.0330}, ImageURL: "https://images.unsplash.com/photo-1496417263034-38ec4f0b665a?w=800"},
	{Name: "Pandavkada Falls", Coordinate: models.Coordinate{Lon: 73.0823, Lat: 19.0367}, ImageURL: "https://images.unsplash.com/photo-1432405972618-c60b0225b8f9?w=800"},
	{Name: "DY Patil Stadium", Coordinate: models.Coordinate{Lon: 73.0283, Lat: 19.0420}, ImageURL: "https://images.unsplash.com/photo-1531415074968-036ba1b575da?w=800"},
	{Name: "Balaji Temple", Coordinate: models.Coordinate{Lon: 73.0220, Lat: 19.0330}, ImageURL: "https://images.unsplash.com/photo-1582510003544-4d00b7f74220?w=800"},
	{Name: "Parsik Hill", Coordinate: models.Coordinate{Lon: 73.0330, Lat: 19.0120}, ImageURL: "https://images.unsplash.com/photo-1464822759023-fed622ff2c3b?w=800"},
	{Name: "Flamingo Sanctuary", Coordinate: models.Coordinate{Lon: 73.0050, Lat: 19.1300}, ImageURL: "https://images.unsplash.com/photo-1497206365907-f5e630693df0?w=800"},
	{Name: "Vashi", Coordinate: models.Coordinate{Lon: 73.0077, Lat: 19.0771}, ImageURL: "https://images.unsplash.com/photo-1567157577867-05ccb1388e66?w=800"},
	{Name: "Sanpada", Coordinate: models.Coordinate{Lon: 73.0118, Lat: 19.0620}, ImageURL: "https://images.unsplash.com/photo-1595658658481-d53d3f999875?w=800"},
	{Name: "Turbhe", Coordinate: models.Coordinate{Lon: 73.0200, Lat: 19.0760}, ImageURL: "https://images.unsplash.com/photo-1566552881560-0be862a7c445?w=800"},
	{Name: "Juinagar", Coordinate: models.Coordinate{Lon: 73.0185, Lat: 19.0515}, ImageURL: "https://images.unsplash.com/photo-1544027993-37dbfe43562a?w=800"},
	{Name: "Nerul", Coordinate: models.Coordinate{Lon: 73.0169, Lat: 19.0330}, ImageURL: "https://images.unsplash.com/photo-1601961405399-801fb1f34581?w=800"},
	{Name: "Seawoods", Coordinate: models.Coordinate{Lon: 73.0190, Lat: 19.0213}, ImageURL: "https://images.unsplash.com/photo-1506929562872-bb421503ef21?w=800"},
	{Name: "CBD Belapur", Coordinate: models.Coordinate{Lon: 73.0386, Lat: 19.0235}, ImageURL: "https://images.unsplash.com/photo-1587474260584-136574528ed5?w=800"},
	{Name: "Kharghar", Coordinate: models.Coordinate{Lon: 73.0690, Lat: 19.0473}, ImageURL: "https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?w=800"},
	{Name: "Kopar Khairane", Coordinate: models.Coordinate{Lon: 73.0092, Lat: 19.1030}, ImageURL: "https://images.unsplash.com/photo-1477587458883-47145ed94245?w=800"},
	{Name: "Ghansoli", Coordinate: models.Coordinate{Lon: 73.0067, Lat: 19.1186}, ImageURL: "https://images.unsplash.com/photo-1524492412937-b28074a5d7da?w=800"},
	{Name: "Airoli", Coordinate: models.Coordinate{Lon: 72.9986, Lat: 19.1590}, ImageURL: "https://images.unsplash.com/photo-1529253355930-ddbe423a2ac7?w=800"},
	{Name: "Panvel", Coordinate: models.Coordinate{Lon: 73.1175, Lat: 18.9894}, ImageURL: "https://images.unsplash.com/photo-1598091383021-15ddea10925d?w=800"},
	{Name: "Navi Mumbai", Coordinate: models.Coordinate{Lon: 73.0297, Lat: 19.0330}, ImageURL: DefaultImage},
}

// Catalogue returns a copy of the static place table in match order.
func Catalogue() []models.Place {
	out := make([]models.Place, len(catalogue))
	copy(out, catalogue)
	return out
}
