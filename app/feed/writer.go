package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lysyi3m/relaycast/app/cfg"
)

const (
	FeedFileName   = "feed.xml"
	HealthFileName = "health.json"
	// markerFileName is a zero-byte file some static hosts require to serve
	// dotfile-adjacent content as-is.
	markerFileName = ".nojekyll"
)

// Health is the machine-readable status artifact written next to the feed.
type Health struct {
	Status       string     `json:"status"`
	Endpoint     string     `json:"endpoint"`
	GeneratedAt  string     `json:"generatedAt"`
	EpisodeCount int        `json:"episodeCount"`
	FeedSize     int        `json:"feedSize"`
	Environment  string     `json:"environment"`
	Accessible   bool       `json:"accessible"`
	DataSource   DataSource `json:"dataSource"`
	Creator      string     `json:"creator"`
}

// DataSource records where each part of the generated feed came from.
type DataSource struct {
	Metadata string   `json:"metadata"` // "relay" or "static"
	Episodes string   `json:"episodes"` // "relay" or "empty"
	Relays   []string `json:"relays"`
}

// NewHealth assembles the health document for a generated feed.
func NewHealth(feedSize, episodeCount int, remoteMetadata bool, relayURLs []string, creatorPubKey string) Health {
	c := cfg.Get()

	metadataSource := "static"
	if remoteMetadata {
		metadataSource = "relay"
	}
	episodeSource := "empty"
	if episodeCount > 0 {
		episodeSource = "relay"
	}

	endpoint := c.BaseUrl
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://localhost:%s", c.Port)
	}

	return Health{
		Status:       "ok",
		Endpoint:     endpoint + "/" + FeedFileName,
		GeneratedAt:  time.Now().In(time.Local).Format(time.RFC3339),
		EpisodeCount: episodeCount,
		FeedSize:     feedSize,
		Environment:  c.Environment,
		Accessible:   true,
		DataSource: DataSource{
			Metadata: metadataSource,
			Episodes: episodeSource,
			Relays:   relayURLs,
		},
		Creator: creatorPubKey,
	}
}

// Writer persists the feed document and its companion artifacts. Re-running
// with the same inputs overwrites deterministically; the output directory
// is a last-writer-wins resource.
type Writer struct {
	outputDir string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Run writes feed.xml, health.json, and the zero-byte hosting marker.
// Write failures are returned to the caller; in build mode they are fatal.
func (w *Writer) Run(document string, health Health) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	feedPath := filepath.Join(w.outputDir, FeedFileName)
	if err := os.WriteFile(feedPath, []byte(document), 0o644); err != nil {
		return fmt.Errorf("failed to write feed document: %w", err)
	}

	healthData, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode health document: %w", err)
	}
	healthPath := filepath.Join(w.outputDir, HealthFileName)
	if err := os.WriteFile(healthPath, healthData, 0o644); err != nil {
		return fmt.Errorf("failed to write health document: %w", err)
	}

	markerPath := filepath.Join(w.outputDir, markerFileName)
	if err := os.WriteFile(markerPath, nil, 0o644); err != nil {
		return fmt.Errorf("failed to write marker file: %w", err)
	}

	return nil
}
