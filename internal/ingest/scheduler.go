package ingest

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultIntervalMin = 10
	MinIntervalMin     = 1
	MaxIntervalMin     = 1440
)

// ScanFunc 执行一次收件箱扫描
type ScanFunc func() error

// Scheduler 定时扫描收件箱
type Scheduler struct {
	mu             sync.Mutex
	enabled        bool
	intervalMin    int
	lastScanTime   time.Time
	lastScanStatus string
	isScanning     bool
	scanFunc       ScanFunc
	ticker         *time.Ticker
	stopCh         chan struct{}
}

func NewScheduler(scanFunc ScanFunc) *Scheduler {
	return &Scheduler{
		scanFunc:    scanFunc,
		intervalMin: DefaultIntervalMin,
	}
}

// Status 调度器当前状态
type Status struct {
	Enabled        bool   `json:"enabled"`
	IntervalMin    int    `json:"interval_minutes"`
	LastScanTime   string `json:"last_scan_time"`
	LastScanStatus string `json:"last_scan_status"`
	IsScanning     bool   `json:"is_scanning"`
}

func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastTime := ""
	if !s.lastScanTime.IsZero() {
		lastTime = s.lastScanTime.Format(time.RFC3339)
	}
	return Status{
		Enabled:        s.enabled,
		IntervalMin:    s.intervalMin,
		LastScanTime:   lastTime,
		LastScanStatus: s.lastScanStatus,
		IsScanning:     s.isScanning,
	}
}

// Configure 更新开关和间隔并重启定时器；超出 1-1440 分钟的间隔被忽略
func (s *Scheduler) Configure(enabled bool, intervalMin int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = enabled
	if intervalMin >= MinIntervalMin && intervalMin <= MaxIntervalMin {
		s.intervalMin = intervalMin
	}

	s.stopTicker()
	if s.enabled {
		s.startTicker()
	}
}

func (s *Scheduler) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stopCh)
		s.ticker = nil
		s.stopCh = nil
	}
}

func (s *Scheduler) startTicker() {
	s.ticker = time.NewTicker(time.Duration(s.intervalMin) * time.Minute)
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	ticker := s.ticker

	go func() {
		for {
			select {
			case <-ticker.C:
				if s.StartScan() {
					s.RunScan()
				}
			case <-stopCh:
				return
			}
		}
	}()
	log.Info().Int("interval_minutes", s.intervalMin).Msg("收件箱定时扫描已启动")
}

// StartScan 标记为扫描中，已有扫描在进行时返回 false。
// 异步触发 RunScan 前先调用它，状态查询不会看到过期的 is_scanning。
func (s *Scheduler) StartScan() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isScanning {
		return false
	}
	s.isScanning = true
	return true
}

// RunScan 执行一次扫描并记录结果
func (s *Scheduler) RunScan() {
	s.mu.Lock()
	s.isScanning = true
	s.mu.Unlock()

	log.Info().Msg("开始扫描收件箱")
	err := s.scanFunc()

	s.mu.Lock()
	s.isScanning = false
	s.lastScanTime = time.Now()
	if err != nil {
		s.lastScanStatus = "failed"
		log.Error().Err(err).Msg("收件箱扫描失败")
	} else {
		s.lastScanStatus = "success"
	}
	s.mu.Unlock()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTicker()
}
