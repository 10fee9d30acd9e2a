// Package shapefile reads source-zone polygons from ESRI shapefiles.
package shapefile

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	hazgeo "github.com/sells-group/hazard-cli/internal/geo"
)

// Border is a named source-zone polygon read from a shapefile. Locations
// holds the outer ring in record order with the closing point dropped.
type Border struct {
	Name      string
	Locations hazgeo.LocationList
	// Area of the outer ring in squared degrees, used to drop slivers.
	Area float64
}

// ReadBorders reads polygon records from a shapefile. Record names come
// from nameField in the companion dbf; records missing the field are
// named by their index. Degenerate rings are skipped with a debug log.
func ReadBorders(shpPath, nameField string, log *zap.Logger) ([]Border, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, nameField) {
			nameIdx = i
			break
		}
	}

	var borders []Border
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		border, err := outerBorder(poly)
		if err != nil {
			log.Debug("shapefile: skipping record",
				zap.Int("record", n), zap.Error(err))
			skipped++
			continue
		}
		border.Name = recordName(reader, nameIdx, n)
		borders = append(borders, border)
	}

	if skipped > 0 {
		log.Debug("shapefile: skipped records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped))
	}
	if len(borders) == 0 {
		return nil, eris.Errorf("shapefile: no polygon records in %s", shpPath)
	}
	return borders, nil
}

// outerBorder converts the first ring of a shapefile polygon to a
// geographic border, validating the ring geometry along the way.
func outerBorder(p *shp.Polygon) (Border, error) {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return Border{}, eris.New("shapefile: empty polygon record")
	}
	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	ring := p.Points[p.Parts[0]:end]
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Border{}, eris.Errorf("shapefile: ring has %d distinct points", len(ring))
	}

	// lon/lat order, closed, for go-geom ring math
	flat := make([]float64, 0, 2*(len(ring)+1))
	pts := make([]hazgeo.Location, 0, len(ring))
	for _, pt := range ring {
		loc, err := hazgeo.NewLocation(pt.Y, pt.X, 0)
		if err != nil {
			return Border{}, err
		}
		pts = append(pts, loc)
		flat = append(flat, pt.X, pt.Y)
	}
	locs := hazgeo.LocList(pts...)
	flat = append(flat, ring[0].X, ring[0].Y)

	poly := geom.NewPolygon(geom.XY)
	if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
		return Border{}, eris.Wrap(err, "shapefile: malformed ring")
	}
	area := poly.Area()
	if area < 0 {
		area = -area
	}
	if area == 0 {
		return Border{}, eris.New("shapefile: ring has zero area")
	}
	return Border{Locations: locs, Area: area}, nil
}

func recordName(r *shp.Reader, nameIdx, recNum int) string {
	if nameIdx < 0 {
		return fmt.Sprintf("Zone %d", recNum)
	}
	name := strings.TrimSpace(strings.TrimRight(r.Attribute(nameIdx), "\x00"))
	if name == "" {
		return fmt.Sprintf("Zone %d", recNum)
	}
	return name
}
