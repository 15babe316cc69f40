package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
)

const namespace = "workshop_planner"

// Metrics 把搜索进度导出为 prometheus 指标，使用独立的 Registry 避免污染全局状态
type Metrics struct {
	registry *prometheus.Registry

	BestScore      prometheus.Gauge
	PopulationSize prometheus.Gauge
	Elapsed        prometheus.Gauge
	Done           prometheus.Gauge
	Generations    prometheus.Counter
	Accepted       prometheus.Counter
	Rejected       prometheus.Counter

	mu   sync.Mutex
	last scheduler.Progress
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BestScore: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_score",
			Help:      "目前为止找到的最高得分",
		}),
		PopulationSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "population_size",
			Help:      "种群中的个体数量",
		}),
		Elapsed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elapsed_seconds",
			Help:      "搜索已运行的时间",
		}),
		Done: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "done",
			Help:      "搜索是否已经结束（1 表示结束）",
		}),
		Generations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "已完成的迭代代数",
		}),
		Accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_accepted_total",
			Help:      "被接受的变异数量",
		}),
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_rejected_total",
			Help:      "被拒绝的变异数量",
		}),
	}
}

// Report 实现 scheduler.Reporter，进度中的计数是累计值，这里只把增量加到计数器上
func (m *Metrics) Report(_ context.Context, p scheduler.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BestScore.Set(float64(p.BestScore))
	m.PopulationSize.Set(float64(p.PopulationSize))
	m.Elapsed.Set(p.Elapsed.Seconds())
	if p.Done {
		m.Done.Set(1)
	}

	if p.Generation > m.last.Generation {
		m.Generations.Add(float64(p.Generation - m.last.Generation))
	}
	if p.Accepted > m.last.Accepted {
		m.Accepted.Add(float64(p.Accepted - m.last.Accepted))
	}
	if p.Rejected > m.last.Rejected {
		m.Rejected.Add(float64(p.Rejected - m.last.Rejected))
	}
	m.last = p
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
