package services

import (
	"errors"

	"autodrive-service/internal/domain"
)

// Sample a route polyline into points spaced at a fixed arc-length interval.
//
// The walk is deterministic: the same polyline and interval always produce
// the same points. The first polyline vertex is always emitted; subsequent
// samples are interpolated along the geometry every intervalMeters. The
// final vertex is appended when the walk ends more than half an interval
// away from the last sample, so short routes still terminate on the
// destination.
func SampleRoute(polyline []domain.Coordinates, intervalMeters float64) ([]domain.RoutePoint, error) {
	if intervalMeters <= 0 {
		return nil, errors.New("sample route: intervalMeters must be positive")
	}
	if len(polyline) == 0 {
		return nil, errors.New("sample route: polyline must not be empty")
	}

	coords := []domain.Coordinates{polyline[0]}
	carry := 0.0 // arc length accumulated since the last emitted sample

	for i := 1; i < len(polyline); i++ {
		a, b := polyline[i-1], polyline[i]
		segLen := a.DistanceMeters(b)
		if segLen == 0 {
			continue
		}

		pos := 0.0
		for carry+(segLen-pos) >= intervalMeters {
			pos += intervalMeters - carry
			carry = 0
			coords = append(coords, a.InterpolateTo(b, pos/segLen))
		}
		carry += segLen - pos
	}

	last := polyline[len(polyline)-1]
	if coords[len(coords)-1].DistanceMeters(last) > intervalMeters/2 {
		coords = append(coords, last)
	}

	points := make([]domain.RoutePoint, len(coords))
	for i, c := range coords {
		points[i] = domain.RoutePoint{Position: c}
	}
	return points, nil
}
