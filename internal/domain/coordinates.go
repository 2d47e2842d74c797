package domain

import "math"

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle (haversine) distance to other.
func (c Coordinates) DistanceMeters(other Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// InterpolateTo returns the coordinate a fraction t of the way toward other.
// Linear interpolation is accurate enough at route-sampling distances.
func (c Coordinates) InterpolateTo(other Coordinates, t float64) Coordinates {
	return Coordinates{
		Lat: c.Lat + (other.Lat-c.Lat)*t,
		Lon: c.Lon + (other.Lon-c.Lon)*t,
	}
}
