// Command analyze runs one accessibility analysis job against OSM
// element and report fixtures loaded from disk, printing (or writing)
// the resulting JSON payload.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/accessmap/aae/internal/config"
	"github.com/accessmap/aae/internal/engine"
	"github.com/accessmap/aae/pkg/models"
)

var (
	bboxFlag        string
	elementsPath    string
	reportsPath     string
	poisPath        string
	anchorPOIID     string
	outPath         string
	queryVersion    string
	profileAssume   string
	profileYAMLPath string

	rootCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Run the accessibility analysis engine against local fixtures",
		Long: `analyze loads a bounding box plus OSM element, POI, and crowdsourced
report fixtures from disk, runs them through the accessibility analysis
pipeline once, and prints the resulting JSON payload.`,
		RunE: runAnalyze,
	}
)

func init() {
	rootCmd.Flags().StringVar(&bboxFlag, "bbox", "", "minLon,minLat,maxLon,maxLat (required)")
	rootCmd.Flags().StringVar(&elementsPath, "elements", "", "path to a JSON array of OSM elements (required)")
	rootCmd.Flags().StringVar(&reportsPath, "reports", "", "path to a JSON array of aggregated reports (optional)")
	rootCmd.Flags().StringVar(&poisPath, "pois", "", "path to a JSON array of POIs (optional)")
	rootCmd.Flags().StringVar(&anchorPOIID, "anchor", "", "anchor POI ID carried into meta debug output (optional); no anchor coordinate is looked up from it")
	rootCmd.Flags().StringVar(&outPath, "out", "", "write the result payload here instead of stdout")
	rootCmd.Flags().StringVar(&queryVersion, "query-version", "dev", "value stamped into meta.overpass_query_version")
	rootCmd.Flags().StringVar(&profileAssume, "profile", "default wheelchair profile", "value stamped into meta.profile_assumptions")
	rootCmd.Flags().StringVar(&profileYAMLPath, "profile-file", "", "path to a YAML tunable-override file (optional)")

	_ = rootCmd.MarkFlagRequired("bbox")
	_ = rootCmd.MarkFlagRequired("elements")

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("analyze failed")
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	bbox, err := parseBBox(bboxFlag)
	if err != nil {
		return fmt.Errorf("parse bbox: %w", err)
	}

	profileCfg := config.Default()
	if profileYAMLPath != "" {
		profileCfg, err = config.LoadProfileYAML(profileYAMLPath)
		if err != nil {
			return fmt.Errorf("load profile file: %w", err)
		}
		log.Debug().
			Float64("poi_snap_radius_m", profileCfg.POISnapRadiusM).
			Float64("anchor_snap_radius_m", profileCfg.AnchorSnapRadiusM).
			Int("max_ranked_candidates", profileCfg.MaxRankedCandidates).
			Msg("loaded profile overrides")
	}

	var elements []models.Element
	if err := loadJSON(elementsPath, &elements); err != nil {
		return fmt.Errorf("load elements: %w", err)
	}

	var reports []models.AggregatedReport
	if reportsPath != "" {
		if err := loadJSON(reportsPath, &reports); err != nil {
			return fmt.Errorf("load reports: %w", err)
		}
	}

	var pois []models.POI
	if poisPath != "" {
		if err := loadJSON(poisPath, &pois); err != nil {
			return fmt.Errorf("load pois: %w", err)
		}
	}

	in := engine.Input{
		BoundingBox:          bbox,
		Elements:             elements,
		POIs:                 pois,
		Reports:              reports,
		AnchorPOIID:          anchorPOIID,
		HasAnchor:            anchorPOIID != "",
		OverpassQueryVersion: queryVersion,
		ProfileAssumptions:   profileAssume,

		NodeIndexCellDeg:    profileCfg.NodeIndexCellDeg,
		EdgeIndexCellDeg:    profileCfg.EdgeIndexCellDeg,
		ReportIndexCellDeg:  profileCfg.ReportIndexCellDeg,
		POISnapRadiusM:      profileCfg.POISnapRadiusM,
		AnchorSnapRadiusM:   profileCfg.AnchorSnapRadiusM,
		ReportFusionRadiusM: profileCfg.ReportFusionRadiusM,
		ReportBonusRadiusM:  profileCfg.ReportBonusRadiusM,
		MaxRankedCandidates: profileCfg.MaxRankedCandidates,
	}

	hooks := engine.Hooks{
		OnStageComplete: func(stage string, d time.Duration) {
			log.Debug().Str("stage", stage).Dur("elapsed", d).Msg("stage complete")
		},
	}

	start := time.Now()
	payload, engErr := engine.Run(in, hooks)
	if engErr != nil {
		return fmt.Errorf("%s: %s", engErr.Kind, engErr.Message)
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("rankings", len(payload.Rankings)).
		Msg("analysis complete")

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if outPath == "" {
		_, err = os.Stdout.Write(append(encoded, '\n'))
		return err
	}
	return os.WriteFile(outPath, encoded, 0o644)
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func parseBBox(s string) (models.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, fmt.Errorf("expected minLon,minLat,maxLon,maxLat, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid number %q: %w", p, err)
		}
		vals[i] = v
	}
	return models.BoundingBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}, nil
}
