package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/hazard-cli/internal/shapefile"
)

var (
	importNameField string
	importSetName   string
	importSetID     int
	importOut       string
)

var importCmd = &cobra.Command{
	Use:   "import <zones.shp>",
	Short: "Convert shapefile polygons to an area source-set definition",
	Long:  "Reads source-zone polygons from a shapefile and emits an area source-set YAML skeleton. MFDs, mech weights, and depths are stubbed for hand editing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		borders, err := shapefile.ReadBorders(args[0], importNameField, zap.L())
		if err != nil {
			return err
		}

		doc := areaSetSkeleton(importSetName, importSetID, borders)
		data, err := yaml.Marshal(doc)
		if err != nil {
			return eris.Wrap(err, "import: marshal model definition")
		}

		out := os.Stdout
		if importOut != "" {
			f, err := os.Create(importOut)
			if err != nil {
				return eris.Wrapf(err, "import: create %s", importOut)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		if _, err := out.Write(data); err != nil {
			return eris.Wrap(err, "import: write model definition")
		}

		zap.L().Info("imported source zones",
			zap.String("path", args[0]),
			zap.Int("zones", len(borders)))
		return nil
	},
}

// yamlModel mirrors the model definition layout accepted by the loader.
type yamlModel struct {
	Name       string          `yaml:"name"`
	SourceSets []yamlSourceSet `yaml:"source_sets"`
}

type yamlSourceSet struct {
	Type        string                          `yaml:"type"`
	Name        string                          `yaml:"name"`
	ID          int                             `yaml:"id"`
	Weight      float64                         `yaml:"weight"`
	Gmms        yamlGmms                        `yaml:"gmms"`
	MaxDepth    float64                         `yaml:"max_depth"`
	DepthMap    map[float64]map[float64]float64 `yaml:"depth_map"`
	Mechs       map[string]float64              `yaml:"mechs"`
	DefaultMfds []map[string]any                `yaml:"default_mfds"`
	Sources     []yamlAreaSource                `yaml:"sources"`
}

type yamlGmms struct {
	Primary            map[string]float64 `yaml:"primary"`
	PrimaryMaxDistance float64            `yaml:"primary_max_distance"`
}

type yamlAreaSource struct {
	Name   string           `yaml:"name"`
	ID     int              `yaml:"id"`
	Border [][]float64      `yaml:"border"`
	Mfds   []map[string]any `yaml:"mfds"`
}

// areaSetSkeleton converts shapefile borders into a loadable area set
// with placeholder rates for hand editing.
func areaSetSkeleton(name string, id int, borders []shapefile.Border) *yamlModel {
	set := yamlSourceSet{
		Type:   "AREA",
		Name:   name,
		ID:     id,
		Weight: 1.0,
		Gmms: yamlGmms{
			Primary:            map[string]float64{"ASK_14": 1.0},
			PrimaryMaxDistance: cfg.Calc.MaxDistance,
		},
		MaxDepth: 14.0,
		DepthMap: map[float64]map[float64]float64{10.0: {5.0: 1.0}},
		Mechs:    map[string]float64{"STRIKE_SLIP": 1.0, "REVERSE": 0.0, "NORMAL": 0.0},
		DefaultMfds: []map[string]any{{
			"type": "GR", "a": 1.0, "b": 0.9, "d_mag": 0.1,
			"m_min": 5.0, "m_max": 7.0, "weight": 1.0,
		}},
	}
	for i, b := range borders {
		coords := make([][]float64, 0, b.Locations.Size())
		for _, loc := range b.Locations.All() {
			coords = append(coords, []float64{loc.Lat(), loc.Lon()})
		}
		set.Sources = append(set.Sources, yamlAreaSource{
			Name:   b.Name,
			ID:     id*100 + i,
			Border: coords,
			Mfds:   []map[string]any{{"type": "GR"}},
		})
	}
	return &yamlModel{
		Name:       fmt.Sprintf("%s Model", name),
		SourceSets: []yamlSourceSet{set},
	}
}

func init() {
	importCmd.Flags().StringVar(&importNameField, "name-field", "NAME", "dbf attribute holding zone names")
	importCmd.Flags().StringVar(&importSetName, "name", "Imported Zones", "source set name")
	importCmd.Flags().IntVar(&importSetID, "id", 1, "source set id")
	importCmd.Flags().StringVar(&importOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(importCmd)
}
