package geo

import "math"

const twoPi = 2 * math.Pi

// Angle returns the angle (radians) between two Locations using the
// Haversine formula.
func Angle(p1, p2 Location) float64 {
	sinDlatBy2 := math.Sin((p2.latRad - p1.latRad) / 2.0)
	sinDlonBy2 := math.Sin((p2.lonRad - p1.lonRad) / 2.0)
	// half length of chord connecting points
	c := sinDlatBy2*sinDlatBy2 +
		math.Cos(p1.latRad)*math.Cos(p2.latRad)*sinDlonBy2*sinDlonBy2
	return 2.0 * math.Atan2(math.Sqrt(c), math.Sqrt(1-c))
}

// HorzDistance returns the great-circle surface distance (km) between two
// Locations. For a faster but less accurate variant see HorzDistanceFast.
func HorzDistance(p1, p2 Location) float64 {
	return EarthRadiusMean * Angle(p1, p2)
}

// HorzDistanceFast returns an approximate surface distance (km) using the
// latitudinal and longitudinal deltas as the legs of a right triangle, with
// the longitudinal leg scaled by the cosine of the mean latitude. About two
// orders of magnitude faster than HorzDistance but imprecise at large
// separations and unsupported across the ±180° boundary.
func HorzDistanceFast(p1, p2 Location) float64 {
	dLat := p1.latRad - p2.latRad
	dLon := (p1.lonRad - p2.lonRad) * math.Cos((p1.latRad+p2.latRad)*0.5)
	return EarthRadiusMean * math.Sqrt(dLat*dLat+dLon*dLon)
}

// VertDistance returns the difference in depth (km) between two Locations,
// positive when p2 is deeper.
func VertDistance(p1, p2 Location) float64 {
	return p2.depth - p1.depth
}

// LinearDistance returns the straight-line 3D distance (km) between two
// Locations using spherical geometry.
func LinearDistance(p1, p2 Location) float64 {
	alpha := Angle(p1, p2)
	r1 := EarthRadiusMean - p1.depth
	r2 := EarthRadiusMean - p2.depth
	b := r1 * math.Sin(alpha)
	c := r2 - r1*math.Cos(alpha)
	return math.Sqrt(b*b + c*c)
}

// LinearDistanceFast returns an approximate 3D distance (km) treating the
// horizontal and vertical separations as orthogonal. Not for use on points
// more than ~200 km apart.
func LinearDistanceFast(p1, p2 Location) float64 {
	h := HorzDistanceFast(p1, p2)
	v := VertDistance(p1, p2)
	return math.Sqrt(h*h + v*v)
}

// DistanceToLine returns the shortest distance (km) between p3 and the
// great-circle line through p1 and p2, extended infinitely in both
// directions. Depths are ignored. The sign indicates which side of the line
// p3 is on (right positive, left negative).
func DistanceToLine(p1, p2, p3 Location) float64 {
	ad13 := Angle(p1, p3)
	dAz := AzimuthRad(p1, p3) - AzimuthRad(p1, p2)
	// cross-track distance in radians
	xtd := math.Asin(math.Sin(ad13) * math.Sin(dAz))
	if math.Abs(xtd) < tolerance {
		return 0.0
	}
	return xtd * EarthRadiusMean
}

// DistanceToLineFast returns the shortest distance (km) between p3 and the
// line through p1 and p2 using a flat-earth approximation in which the
// longitudes of the line points are scaled by the cosine of latitude. Only
// appropriate over short distances (<200 km) and unsupported across ±180°.
// The sign indicates which side of the line p3 is on (right positive).
func DistanceToLineFast(p1, p2, p3 Location) float64 {
	// use average latitude to scale longitude
	lonScale := math.Cos(0.5*p3.latRad + 0.25*p1.latRad + 0.25*p2.latRad)

	// first point on line transformed to origin; others scaled by lon
	x2 := (p2.lonRad - p1.lonRad) * lonScale
	y2 := p2.latRad - p1.latRad
	x3 := (p3.lonRad - p1.lonRad) * lonScale
	y3 := p3.latRad - p1.latRad

	return (x3*y2 - x2*y3) / math.Sqrt(x2*x2+y2*y2) * EarthRadiusMean
}

// DistanceToSegment returns the shortest distance (km) between p3 and the
// great-circle segment from p1 to p2. If p3 does not project onto the
// segment the distance to the closest endpoint is returned. Depths are
// ignored.
func DistanceToSegment(p1, p2, p3 Location) float64 {
	ad13 := Angle(p1, p3)
	dAz := AzimuthRad(p1, p3) - AzimuthRad(p1, p2)
	xtd := math.Asin(math.Sin(ad13) * math.Sin(dAz))
	// along-track distance in km
	atd := math.Acos(math.Cos(ad13)/math.Cos(xtd)) * EarthRadiusMean
	if atd > HorzDistance(p1, p2) {
		return HorzDistance(p2, p3)
	}
	if math.Cos(dAz) < 0 {
		return HorzDistance(p1, p3)
	}
	if math.Abs(xtd) < tolerance {
		return 0.0
	}
	return math.Abs(xtd) * EarthRadiusMean
}

// DistanceToSegmentFast returns the shortest distance (km) between p3 and
// the segment from p1 to p2 using the same flat-earth transform as
// DistanceToLineFast.
func DistanceToSegmentFast(p1, p2, p3 Location) float64 {
	lonScale := math.Cos(0.5*p3.latRad + 0.25*p1.latRad + 0.25*p2.latRad)

	x2 := (p2.lonRad - p1.lonRad) * lonScale
	y2 := p2.latRad - p1.latRad
	x3 := (p3.lonRad - p1.lonRad) * lonScale
	y3 := p3.latRad - p1.latRad

	return ptSegDist(x2, y2, x3, y3) * EarthRadiusMean
}

// ptSegDist returns the distance from (px,py) to the segment from the
// origin to (x,y).
func ptSegDist(x, y, px, py float64) float64 {
	dot := px*x + py*y
	segLenSq := x*x + y*y
	var projLenSq float64
	if dot <= 0 {
		projLenSq = 0
	} else if dot >= segLenSq {
		px -= x
		py -= y
		projLenSq = 0
	} else {
		projLenSq = dot * dot / segLenSq
	}
	d := px*px + py*py - projLenSq
	if d < 0 {
		d = 0
	}
	return math.Sqrt(d)
}

// AzimuthRad returns the initial bearing (radians, [0,2π)) when moving from
// p1 to p2. For back azimuth, reverse the arguments.
func AzimuthRad(p1, p2 Location) float64 {
	// check the poles using a small number ~ machine precision
	if IsPole(p1) {
		if p1.latRad > 0 {
			return math.Pi // N pole, point south
		}
		return 0 // S pole, point north
	}

	dLon := p2.lonRad - p1.lonRad
	cosLat2 := math.Cos(p2.latRad)
	az := math.Atan2(
		math.Sin(dLon)*cosLat2,
		math.Cos(p1.latRad)*math.Sin(p2.latRad)-math.Sin(p1.latRad)*cosLat2*math.Cos(dLon))
	return math.Mod(az+twoPi, twoPi)
}

// Azimuth returns the initial bearing in decimal degrees, [0°, 360°).
func Azimuth(p1, p2 Location) float64 {
	return AzimuthRad(p1, p2) * ToDeg
}

// IsPole reports whether p is at one of the geographic poles.
func IsPole(p Location) bool {
	return math.Cos(p.latRad) < tolerance
}

// ShiftedLocation returns the Location reached by moving from p along
// Vector v (azimuth, horizontal and vertical components).
func ShiftedLocation(p Location, v Vector) Location {
	return shifted(p.latRad, p.lonRad, p.depth, v.Azimuth, v.Horizontal, v.Vertical)
}

// shifted assumes lat, lon and azimuth in radians, depth and distances in km.
func shifted(lat, lon, depth, az, dH, dV float64) Location {
	sinLat1 := math.Sin(lat)
	cosLat1 := math.Cos(lat)
	ad := dH / EarthRadiusMean // angular distance
	sinD := math.Sin(ad)
	cosD := math.Cos(ad)

	lat2 := math.Asin(sinLat1*cosD + cosLat1*sinD*math.Cos(az))
	lon2 := lon + math.Atan2(math.Sin(az)*sinD*cosLat1, cosD-sinLat1*math.Sin(lat2))
	return LocWithDepth(lat2*ToDeg, lon2*ToDeg, depth+dV)
}

// Centroid returns the average position of a set of Locations.
func Centroid(locs []Location) Location {
	var latRad, lonRad, depth float64
	for _, loc := range locs {
		latRad += loc.latRad
		lonRad += loc.lonRad
		depth += loc.depth
	}
	n := float64(len(locs))
	return LocWithDepth(latRad/n*ToDeg, lonRad/n*ToDeg, depth/n)
}

// MinDistanceToLine returns the minimum distance (km) from loc to the
// polyline defined by locs, using fast segment distances.
func MinDistanceToLine(loc Location, locs LocationList) float64 {
	if locs.Size() == 1 {
		return HorzDistanceFast(loc, locs.Get(0))
	}
	min := math.MaxFloat64
	for i := 0; i < locs.Size()-1; i++ {
		min = math.Min(min, DistanceToSegmentFast(locs.Get(i), locs.Get(i+1), loc))
	}
	return min
}

// Filter is a site-relative Location predicate.
type Filter func(Location) bool

// DistanceFilter returns a Filter that passes Locations within distance km
// of origin, using fast horizontal distance.
func DistanceFilter(origin Location, distance float64) Filter {
	return func(loc Location) bool {
		return HorzDistanceFast(origin, loc) <= distance
	}
}

// RectangleFilter returns a Filter that passes Locations inside a
// geographic rectangle of half-width and half-height distance km centered on
// origin, clamped to the supported coordinate ranges. For use as a fast
// first-pass test before exact distance filtering.
func RectangleFilter(origin Location, distance float64) Filter {
	latDelta := distance * DegreesLatPerKm()
	lonDelta := distance * DegreesLonPerKm(origin)

	minLat := math.Max(origin.lat-latDelta, MinLat) * ToRad
	maxLat := math.Min(origin.lat+latDelta, MaxLat) * ToRad
	minLon := math.Max(origin.lon-lonDelta, MinLon) * ToRad
	maxLon := math.Min(origin.lon+lonDelta, MaxLon) * ToRad

	return func(loc Location) bool {
		return loc.latRad >= minLat && loc.latRad <= maxLat &&
			loc.lonRad >= minLon && loc.lonRad <= maxLon
	}
}

// DistanceAndRectangleFilter returns a Filter that preprocesses Locations
// through a RectangleFilter before the exact distance test.
func DistanceAndRectangleFilter(origin Location, distance float64) Filter {
	rect := RectangleFilter(origin, distance)
	dist := DistanceFilter(origin, distance)
	return func(loc Location) bool {
		return rect(loc) && dist(loc)
	}
}
