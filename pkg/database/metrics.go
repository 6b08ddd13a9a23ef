package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolStat is the subset of *pgxpool.Stat the collector reads.
type poolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	MaxConns() int32
	AcquireCount() int64
	EmptyAcquireCount() int64
	CanceledAcquireCount() int64
	NewConnsCount() int64
}

type poolMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(poolStat) float64
}

// PoolStatsCollector exports pgxpool statistics on every scrape.
type PoolStatsCollector struct {
	stat    func() poolStat
	service string
	metrics []poolMetric
}

// NewPoolStatsCollector returns a collector reading from pool.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	return newPoolStatsCollector(func() poolStat { return pool.Stat() }, service)
}

func newPoolStatsCollector(stat func() poolStat, service string) *PoolStatsCollector {
	gauge := func(name, help string, f func(poolStat) float64) poolMetric {
		return poolMetric{
			desc:      prometheus.NewDesc(name, help, []string{"service"}, nil),
			valueType: prometheus.GaugeValue,
			value:     f,
		}
	}
	counter := func(name, help string, f func(poolStat) float64) poolMetric {
		m := gauge(name, help, f)
		m.valueType = prometheus.CounterValue
		return m
	}

	return &PoolStatsCollector{
		stat:    stat,
		service: service,
		metrics: []poolMetric{
			gauge("db_pool_acquired_connections", "Connections currently checked out.",
				func(s poolStat) float64 { return float64(s.AcquiredConns()) }),
			gauge("db_pool_idle_connections", "Connections currently idle.",
				func(s poolStat) float64 { return float64(s.IdleConns()) }),
			gauge("db_pool_total_connections", "Connections currently open.",
				func(s poolStat) float64 { return float64(s.TotalConns()) }),
			gauge("db_pool_max_connections", "Configured pool size.",
				func(s poolStat) float64 { return float64(s.MaxConns()) }),
			counter("db_pool_acquire_count_total", "Successful acquires.",
				func(s poolStat) float64 { return float64(s.AcquireCount()) }),
			counter("db_pool_empty_acquire_count_total", "Acquires that waited for a free connection.",
				func(s poolStat) float64 { return float64(s.EmptyAcquireCount()) }),
			counter("db_pool_canceled_acquire_count_total", "Acquires canceled by their context.",
				func(s poolStat) float64 { return float64(s.CanceledAcquireCount()) }),
			counter("db_pool_new_connections_total", "Connections opened.",
				func(s poolStat) float64 { return float64(s.NewConnsCount()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.value(s), c.service)
	}
}

// RegisterPoolMetrics registers a collector for pool with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool, service string) error {
	return reg.Register(NewPoolStatsCollector(pool, service))
}
