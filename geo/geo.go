package geo

import (
	"fmt"
	"math"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// Point is a geographic point in the canonical (longitude, latitude)
// ordering. Everything inside this codebase stores and compares points in
// this ordering; UI-facing payloads that carry (latitude, longitude) must go
// through PointFromLatLng at the boundary.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PointFromLatLng converts from the (latitude, longitude) ordering used by
// map UIs into the canonical ordering. This is the only place where the two
// orderings meet; do not swap coordinates anywhere else.
func PointFromLatLng(lat, lng float64) Point {
	return Point{Lon: lng, Lat: lat}
}

// Valid reports whether the point carries usable numeric coordinates.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// Ring is a closed polygon boundary: an ordered sequence of points whose
// first and last elements coincide.
type Ring []Point

// NewRing validates and closes a polygon boundary. The input needs at least
// 3 distinct vertices; if the first and last vertex differ the ring is
// closed by appending a copy of the first vertex.
func NewRing(pts []Point) (Ring, error) {
	distinct := map[Point]bool{}
	for _, p := range pts {
		if !p.Valid() {
			return nil, fmt.Errorf("ring vertex %v has non-numeric coordinates", p)
		}
		distinct[p] = true
	}
	// The closing vertex duplicates the first one, so it doesn't add to the
	// distinct count.
	if len(distinct) < 3 {
		return nil, fmt.Errorf("ring needs at least 3 distinct vertices, got %d", len(distinct))
	}
	ring := make(Ring, len(pts))
	copy(ring, pts)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

// RingFromLatLngPairs builds a ring from boundary vertices captured in
// (latitude, longitude) order, converting every vertex through
// PointFromLatLng.
func RingFromLatLngPairs(pairs [][2]float64) (Ring, error) {
	pts := make([]Point, len(pairs))
	for i, pair := range pairs {
		pts[i] = PointFromLatLng(pair[0], pair[1])
	}
	return NewRing(pts)
}

// Contains runs an even-odd ray cast: a ray from p towards +infinity on the
// longitude axis, counting boundary crossings. Behavior for points exactly
// on an edge or vertex is implementation-defined.
func (r Ring) Contains(p Point) bool {
	if len(r) < 4 || !p.Valid() {
		return false
	}
	inside := false
	for i := 0; i < len(r)-1; i++ {
		a, b := r[i], r[i+1]
		if (a.Lat > p.Lat) == (b.Lat > p.Lat) {
			continue
		}
		cross := a.Lon + (p.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
		if p.Lon < cross {
			inside = !inside
		}
	}
	return inside
}

// ToWKT renders the ring as an SRID-4326 WKT polygon for the spatial index
// side table.
func (r Ring) ToWKT() string {
	verts := make([]string, len(r))
	for i, p := range r {
		verts[i] = fmt.Sprintf("%g %g", p.Lon, p.Lat)
	}
	return fmt.Sprintf("POLYGON((%s))", strings.Join(verts, ","))
}

func PointToWKT(p Point) string {
	return fmt.Sprintf("POINT(%g %g)", p.Lon, p.Lat)
}

// ToFeature renders the ring as a GeoJSON polygon feature with a single
// linear ring. GeoJSON uses (lon, lat) ordering, same as the canonical one.
func (r Ring) ToFeature() *geojson.Feature {
	coords := make([][]float64, len(r))
	for i, p := range r {
		coords[i] = []float64{p.Lon, p.Lat}
	}
	return geojson.NewPolygonFeature([][][]float64{coords})
}

// RingFromFeature extracts the outer linear ring from a GeoJSON polygon
// feature. Interior rings (holes) are not supported and are ignored.
func RingFromFeature(f *geojson.Feature) (Ring, error) {
	if f == nil || f.Geometry == nil {
		return nil, fmt.Errorf("feature has no geometry")
	}
	if !f.Geometry.IsPolygon() {
		return nil, fmt.Errorf("unsupported geometry type: %s", f.Geometry.Type)
	}
	if len(f.Geometry.Polygon) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}
	outer := f.Geometry.Polygon[0]
	pts := make([]Point, 0, len(outer))
	for _, c := range outer {
		if len(c) < 2 {
			return nil, fmt.Errorf("polygon vertex has %d coordinates, want 2", len(c))
		}
		pts = append(pts, Point{Lon: c[0], Lat: c[1]})
	}
	return NewRing(pts)
}
