// Package influx writes per-game and per-batch measurements to InfluxDB,
// falling back to a gzipped line-protocol file when the server is down.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/viperball/matchsim/internal/config"
	"github.com/viperball/matchsim/pkg/core"
)

// ErrDisabled is returned by Connect when influx is switched off.
var ErrDisabled = errors.New("influx.enabled is false")

// PerformanceBucket holds simulator throughput samples.
const PerformanceBucket = "sim_performance"

// Measurement names.
const (
	MeasurementGame     = "game"
	MeasurementBatch    = "batch_summary"
	MeasurementProgress = "batch_progress"
)

// retention for buckets this package creates
const retentionSeconds = 60 * 60 * 24 * 90

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	backupFile *os.File
	mu         sync.Mutex // guards BackupWriter
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Manager {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "sim_games"
	}
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		IsValid:     false,
		BucketNames: []string{bucket, PerformanceBucket},
		Logger:      log,
		BackupPath:  backupPath,
		cfg:         cfg,
	}
}

// GameBucket is where game and batch points go.
func (m *Manager) GameBucket() string {
	return m.BucketNames[0]
}

// Connect establishes a connection to InfluxDB. When the server cannot be
// reached every point goes to the backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)

	if err != nil || !running {
		m.IsValid = false
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %w", err)
			}
			m.backupFile = file
			m.BackupWriter = gzip.NewWriter(file)
		}
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
		return nil
	}

	m.IsValid = true
	if err := m.setupOrganizationAndBuckets(ctx); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) setupOrganizationAndBuckets(ctx context.Context) error {
	orgName := m.cfg.Org

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	for _, bucket := range m.BucketNames {
		if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return err
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	for _, bucket := range m.BucketNames {
		m.Writers[bucket] = m.Client.WriteAPI(m.cfg.Org, bucket)

		errorsCh := m.Writers[bucket].Errors()
		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, errorsCh)
	}

	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() error {
	for _, w := range m.Writers {
		w.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
		m.backupFile = nil
	}
	return errors.Join(errs...)
}

// GamePoint describes one completed game.
func GamePoint(r *core.GameRecord, at time.Time) *influxdb2_write.Point {
	res := r.Result
	p := influxdb2_write.NewPointWithMeasurement(MeasurementGame).
		AddTag("batch", r.BatchID).
		AddField("index", r.Index).
		AddField("seed", r.Seed).
		AddField("duration_ms", float64(r.Duration.Microseconds())/1000).
		SetTime(at)
	if res == nil {
		return p
	}

	home, away := res.Stats.Home, res.Stats.Away
	addTag(p, "home", res.HomeTeam)
	addTag(p, "away", res.AwayTeam)
	addTag(p, "weather", res.Weather)
	addTag(p, "home_offense", res.Styles.Home.Offense)
	addTag(p, "away_offense", res.Styles.Away.Offense)
	return p.
		AddField("home_score", res.FinalScore.Home).
		AddField("away_score", res.FinalScore.Away).
		AddField("plays", len(res.PlayByPlay)).
		AddField("drives", len(res.DriveSummary)).
		AddField("turnovers", home.Turnovers+away.Turnovers).
		AddField("lateral_chains", home.LateralChains+away.LateralChains).
		AddField("total_yards", home.TotalYards+away.TotalYards).
		AddField("winner", string(res.Winner()))
}

// addTag skips empty values, which line protocol cannot carry.
func addTag(p *influxdb2_write.Point, key, value string) {
	if value != "" {
		p.AddTag(key, value)
	}
}

// SummaryPoint describes a finished batch.
func SummaryPoint(s *core.BatchSummary) *influxdb2_write.Point {
	at := s.FinishedAt
	if at.IsZero() {
		at = time.Now()
	}
	p := influxdb2_write.NewPointWithMeasurement(MeasurementBatch).
		AddTag("batch", s.BatchID).
		AddField("games", s.Games).
		AddField("failed", s.Failed).
		AddField("plays_per_game", s.PlaysPerGame).
		AddField("points_per_team", s.PointsPerTeam).
		AddField("home_wins", s.HomeWins).
		AddField("away_wins", s.AwayWins).
		AddField("ties", s.Ties).
		AddField("turnovers", s.Turnovers).
		AddField("fourth_down_rate", s.FourthDown.Rate).
		SetTime(at)
	for bucket, b := range s.DriveEfficiency {
		p.AddField(string(bucket)+"_score_rate", b.ScoreRate)
	}
	return p
}

// ProgressPoint samples the throughput of a running batch.
func ProgressPoint(batchID string, total, completed, failed int, rate float64, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(
		MeasurementProgress,
		map[string]string{"batch": batchID},
		map[string]interface{}{
			"total":            total,
			"completed":        completed,
			"failed":           failed,
			"games_per_second": rate,
			"percent":          percent(completed+failed, total),
		},
		at,
	)
}

func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(done)/float64(total)) / 10
}
