package monitoring

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is one sample of host and process resource usage.
type Stats struct {
	HostCPUPercent    float64   `json:"hostCpuPercent"`
	HostMemoryPercent float64   `json:"hostMemoryPercent"`
	ProcessCPUPercent float64   `json:"processCpuPercent"`
	ProcessRSSBytes   uint64    `json:"processRssBytes"`
	SampledAt         time.Time `json:"sampledAt"`
}

// StatUpdater periodically samples resource usage for the health endpoint
// and the metrics registry.
type StatUpdater struct {
	interval time.Duration
	proc     *process.Process
	latest   atomic.Pointer[Stats]
	gauges   *prometheus.GaugeVec
	done     chan struct{}
	stopped  chan struct{}
}

// NewStatUpdater creates a new StatUpdater and registers its gauges on reg.
func NewStatUpdater(interval time.Duration, reg prometheus.Registerer) (*StatUpdater, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	gauges := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stratum",
		Name:      "resource_usage",
		Help:      "Sampled host and process resource usage.",
	}, []string{"resource"})
	if reg != nil {
		if err := reg.Register(gauges); err != nil {
			return nil, err
		}
	}
	return &StatUpdater{
		interval: interval,
		proc:     proc,
		gauges:   gauges,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	defer close(su.stopped)
	log.Info().Msg("Starting background stat updater...")
	ticker := time.NewTicker(su.interval)
	defer ticker.Stop()

	// Run once immediately on start
	su.update()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-ticker.C:
			su.update()
		}
	}
}

// Stop halts the updater and waits for it to exit.
func (su *StatUpdater) Stop() {
	close(su.done)
	<-su.stopped
}

// Latest returns the most recent sample, or nil before the first one.
func (su *StatUpdater) Latest() *Stats {
	return su.latest.Load()
}

func (su *StatUpdater) update() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := Stats{SampledAt: time.Now().UTC()}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		stats.HostCPUPercent = pct[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("Failed to sample host CPU")
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.HostMemoryPercent = vm.UsedPercent
	} else {
		log.Warn().Err(err).Msg("Failed to sample host memory")
	}
	if pct, err := su.proc.CPUPercentWithContext(ctx); err == nil {
		stats.ProcessCPUPercent = pct
	}
	if info, err := su.proc.MemoryInfoWithContext(ctx); err == nil {
		stats.ProcessRSSBytes = info.RSS
	}

	su.latest.Store(&stats)
	su.gauges.WithLabelValues("host_cpu_percent").Set(stats.HostCPUPercent)
	su.gauges.WithLabelValues("host_memory_percent").Set(stats.HostMemoryPercent)
	su.gauges.WithLabelValues("process_cpu_percent").Set(stats.ProcessCPUPercent)
	su.gauges.WithLabelValues("process_rss_bytes").Set(float64(stats.ProcessRSSBytes))
}
