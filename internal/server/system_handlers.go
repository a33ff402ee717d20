package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/compass/internal/database"
	"github.com/aristath/compass/internal/di"
	"github.com/aristath/compass/internal/scheduler"
)

// SystemHandlers serves process and database monitoring endpoints plus
// manual triggers for the background jobs.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	container *di.Container
	jobs      *di.JobInstances
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		container: container,
	}
}

// SetJobs registers job instances for manual triggering (called after job
// registration)
func (h *SystemHandlers) SetJobs(jobs *di.JobInstances) {
	h.jobs = jobs
}

// SystemStatsResponse is the process stats payload
type SystemStatsResponse struct {
	CPUPercent  float64 `json:"cpu_percent"`
	RAMPercent  float64 `json:"ram_percent"`
	RAMUsedMB   float64 `json:"ram_used_mb"`
	Goroutines  int     `json:"goroutines"`
	LastChecked string  `json:"last_checked"`
}

// HandleSystemStats returns CPU, RAM and goroutine statistics
// GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent, ramUsedMB := h.getSystemStats()

	h.writeJSON(w, SystemStatsResponse{
		CPUPercent:  cpuPercent,
		RAMPercent:  ramPercent,
		RAMUsedMB:   ramUsedMB,
		Goroutines:  runtime.NumGoroutine(),
		LastChecked: time.Now().Format(time.RFC3339),
	})
}

// DatabaseStats holds one database's size statistics
type DatabaseStats struct {
	Name       string  `json:"name"`
	SizeMB     float64 `json:"size_mb"`
	WALSizeMB  float64 `json:"wal_size_mb"`
	PageCount  int64   `json:"page_count"`
	FreedPages int64   `json:"freelist_count"`
}

// DatabaseStatsResponse is the database stats payload
type DatabaseStatsResponse struct {
	Databases   []DatabaseStats `json:"databases"`
	TotalSizeMB float64         `json:"total_size_mb"`
	LastChecked string          `json:"last_checked"`
}

// HandleDatabaseStats returns size statistics for every database
// GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	databases := []*database.DB{
		h.container.HistoryDB,
		h.container.AppDB,
		h.container.ReportsDB,
		h.container.ClientDataDB,
	}

	response := DatabaseStatsResponse{LastChecked: time.Now().Format(time.RFC3339)}
	for _, db := range databases {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			continue
		}
		sizeMB := float64(stats.SizeBytes) / 1024 / 1024
		response.Databases = append(response.Databases, DatabaseStats{
			Name:       db.Name(),
			SizeMB:     sizeMB,
			WALSizeMB:  float64(stats.WALSizeBytes) / 1024 / 1024,
			PageCount:  stats.PageCount,
			FreedPages: stats.FreelistCount,
		})
		response.TotalSizeMB += sizeMB
	}

	h.writeJSON(w, response)
}

// DiskUsageResponse is the disk usage payload
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
}

// HandleDiskUsage returns disk usage of the data directory
// GET /api/system/disk
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, DiskUsageResponse{
		DataDirMB: h.getDirSize(h.dataDir),
	})
}

// HandleTriggerPriceSync triggers the price sync job immediately
// POST /api/system/jobs/price-sync
func (h *SystemHandlers) HandleTriggerPriceSync(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.jobs.PriceSync == nil {
		h.jobUnavailable(w, "price_sync")
		return
	}
	h.triggerJob(w, h.jobs.PriceSync)
}

// HandleTriggerDailyReport triggers the daily report job immediately
// POST /api/system/jobs/daily-report
func (h *SystemHandlers) HandleTriggerDailyReport(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.jobs.DailyReport == nil {
		h.jobUnavailable(w, "daily_report")
		return
	}
	h.triggerJob(w, h.jobs.DailyReport)
}

// HandleTriggerCacheCleanup triggers the cache cleanup job immediately
// POST /api/system/jobs/cache-cleanup
func (h *SystemHandlers) HandleTriggerCacheCleanup(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.jobs.CacheCleanup == nil {
		h.jobUnavailable(w, "cache_cleanup")
		return
	}
	h.triggerJob(w, h.jobs.CacheCleanup)
}

// HandleTriggerWALCheckpoint triggers the WAL checkpoint job immediately
// POST /api/system/jobs/wal-checkpoint
func (h *SystemHandlers) HandleTriggerWALCheckpoint(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil || h.jobs.WALCheckpoint == nil {
		h.jobUnavailable(w, "wal_checkpoint")
		return
	}
	h.triggerJob(w, h.jobs.WALCheckpoint)
}

// triggerJob runs a job in the background and acknowledges the start.
// Jobs hold their own timeouts, so a slow run never blocks the request.
func (h *SystemHandlers) triggerJob(w http.ResponseWriter, job scheduler.Job) {
	h.log.Info().Str("job", job.Name()).Msg("Manual job trigger")

	go func() {
		if err := job.Run(); err != nil {
			h.log.Error().Err(err).Str("job", job.Name()).Msg("Manually triggered job failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "started",
		"job":    job.Name(),
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) jobUnavailable(w http.ResponseWriter, name string) {
	h.log.Warn().Str("job", name).Msg("Job not registered")
	http.Error(w, "Job not registered", http.StatusServiceUnavailable)
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the endpoint responds quickly
func (h *SystemHandlers) getSystemStats() (float64, float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent, float64(memStat.Used) / 1024 / 1024
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
