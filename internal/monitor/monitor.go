// Package monitor samples the progress of the running batch into a status
// file, the database and InfluxDB.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/viperball/matchsim/internal/batch"
	"github.com/viperball/matchsim/internal/influx"
	"github.com/viperball/matchsim/internal/logging"
	"github.com/viperball/matchsim/internal/model"
	"github.com/viperball/matchsim/internal/model/convert"
	"github.com/viperball/matchsim/internal/worker"

	"gorm.io/gorm"
)

// StatusFileName is written into Dependencies.StatusDir.
const StatusFileName = "status.txt"

// DefaultInterval is the sampling period when none is configured.
const DefaultInterval = time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB            *gorm.DB // optional
	LogManager    *logging.SlogManager
	BatchContext  *batch.Context
	WorkerManager *worker.Manager // optional
	Influx        *influx.Manager // optional
	StatusDir     string
	Interval      time.Duration
}

// Status is one sample of a running batch
type Status struct {
	Time           time.Time      `json:"time"`
	BatchID        string         `json:"batch_id"`
	Label          string         `json:"label"`
	Progress       batch.Progress `json:"progress"`
	GamesPerSecond float64        `json:"games_per_second"`
	PendingWrites  int            `json:"pending_writes"`
	Worker         worker.Stats   `json:"worker"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}

	// previous sample, for the rate
	lastDone int
	lastTime time.Time
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus samples the running batch and renders it for the status
// file. The rate covers the time since the previous sample.
func (s *Service) GetProgramStatus(now time.Time) (output []string, status Status) {
	ctx := s.deps.BatchContext
	b := ctx.GetBatch()
	progress := ctx.GetProgress()

	status = Status{
		Time:     now,
		BatchID:  ctx.BatchID(),
		Label:    b.Label,
		Progress: progress,
	}
	if s.deps.WorkerManager != nil {
		status.PendingWrites = s.deps.WorkerManager.Pending()
		status.Worker = s.deps.WorkerManager.Stats()
	}

	s.mu.Lock()
	if !s.lastTime.IsZero() && now.After(s.lastTime) {
		status.GamesPerSecond = float64(progress.Done()-s.lastDone) / now.Sub(s.lastTime).Seconds()
	}
	s.lastDone = progress.Done()
	s.lastTime = now
	s.mu.Unlock()

	output = append(output, fmt.Sprintf("%s: %d/%d games, %d failed, %.1f games/s",
		status.Label, progress.Completed, progress.Total, progress.Failed, status.GamesPerSecond))

	statusStr, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		statusStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	output = append(output, string(statusStr))

	return output, status
}

// sample records one status everywhere it is configured to go.
func (s *Service) sample(statusFile *os.File) {
	if !s.deps.BatchContext.Running() {
		return
	}
	logger := s.deps.LogManager.Logger()

	statusStr, status := s.GetProgramStatus(time.Now())

	if statusFile != nil {
		statusFile.Truncate(0)
		statusFile.Seek(0, 0)
		for _, line := range statusStr {
			statusFile.WriteString(line + "\n")
		}
	}

	p := status.Progress
	if s.deps.DB != nil {
		row := convert.CoreToBatchProgress(status.BatchID, p.Total, p.Completed, p.Failed, status.GamesPerSecond, status.Time)
		if err := s.deps.DB.Create(&row).Error; err != nil {
			logger.Error("Error writing batch progress", "error", err)
		}
	}

	if s.deps.Influx != nil {
		point := influx.ProgressPoint(status.BatchID, p.Total, p.Completed, p.Failed, status.GamesPerSecond, status.Time)
		if err := s.deps.Influx.WritePoint(influx.PerformanceBucket, point); err != nil {
			logger.Warn("Error writing progress point", "error", err)
		}
	}
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	logger := s.deps.LogManager.Logger()

	var statusFile *os.File
	if s.deps.StatusDir != "" {
		if err := os.MkdirAll(s.deps.StatusDir, 0o755); err != nil {
			return fmt.Errorf("error creating status directory: %w", err)
		}
		f, err := os.Create(filepath.Join(s.deps.StatusDir, StatusFileName))
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		statusFile = f
	}

	go func() {
		defer func() {
			if statusFile != nil {
				statusFile.Close()
			}
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(s.done)
		}()

		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.sample(statusFile)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

// LatestProgress reads the newest progress row stored for a batch.
func LatestProgress(db *gorm.DB, batchID string) (model.BatchProgress, error) {
	var row model.BatchProgress
	err := db.Where("batch_id = ?", batchID).Order("time desc").First(&row).Error
	return row, err
}
