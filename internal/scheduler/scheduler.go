package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Scheduler struct {
	parameters *Parameters
	ref        *Reference
	logger     *slog.Logger
	reporters  []Reporter
	population []*individual
}

func New(parameters *Parameters, ref *Reference, logger *slog.Logger, reporters ...Reporter) (*Scheduler, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if parameters.PopulationSize <= 0 {
		return nil, fmt.Errorf("种群大小必须为正数，实际为 %d", parameters.PopulationSize)
	}
	if parameters.MaxGenerations < 0 {
		return nil, fmt.Errorf("最大迭代次数不能为负数，实际为 %d", parameters.MaxGenerations)
	}
	if ref == nil {
		return nil, errors.New("缺少参考数据")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := *parameters
	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	if p.Workers > p.PopulationSize {
		p.Workers = p.PopulationSize
	}
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}
	if p.ReportInterval <= 0 {
		p.ReportInterval = time.Second
	}

	return &Scheduler{
		parameters: &p,
		ref:        ref,
		logger:     logger,
		reporters:  reporters,
	}, nil
}

// Seed 返回实际使用的随机种子，用于复现一次搜索
func (s *Scheduler) Seed() int64 {
	return s.parameters.Seed
}

// Run 一直搜索直到 ctx 被取消或达到最大迭代次数，然后返回得分最高的方案
// 取消只在每一代之间检查，是正常的结束方式而不是错误
// Run 返回前会等待最后一次（Done）进度送达所有 reporter
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	// 生成初始种群，每个个体都有自己的随机数生成器，结果与 worker 数量无关
	s.population = make([]*individual, s.parameters.PopulationSize)
	for i := range s.population {
		ind, err := newIndividual(s.ref, i, s.parameters.Seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("初始化种群失败: %w", err)
		}
		s.population[i] = ind
	}

	best := int64(math.MinInt64)
	for _, ind := range s.population {
		best = max(best, ind.score)
	}

	s.logger.Info("开始搜索",
		slog.Int("population", s.parameters.PopulationSize),
		slog.Int("workers", s.parameters.Workers),
		slog.Int64("seed", s.parameters.Seed),
		slog.Int("workshops", s.ref.WorkshopCount()),
		slog.Int("users", s.ref.UserCount()),
		slog.Int64("initial_best", best),
	)

	// 进度在单独的 goroutine 中交给 reporter，搜索循环从不等待 I/O
	progress := make(chan Progress, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reportCtx := context.WithoutCancel(ctx)
		for p := range progress {
			s.report(reportCtx, p)
		}
	}()
	defer func() {
		close(progress)
		wg.Wait()
	}()
	publish := func(p Progress) {
		// 缓冲区已满时丢弃尚未汇报的旧进度，只有本 goroutine 发送，因此不会阻塞
		select {
		case progress <- p:
		default:
			select {
			case <-progress:
			default:
			}
			progress <- p
		}
	}

	var accepted, rejected uint64
	generation := 0
	aborted := false
	lastReport := time.Time{}

	for s.parameters.MaxGenerations == 0 || generation < s.parameters.MaxGenerations {
		if ctx.Err() != nil {
			aborted = true
			break
		}

		n, err := s.step()
		if err != nil {
			return nil, fmt.Errorf("第 %d 代迭代失败: %w", generation+1, err)
		}
		generation++
		accepted += uint64(n)
		rejected += uint64(len(s.population) - n)

		for _, ind := range s.population {
			if ind.score > best {
				best = ind.score
				s.logger.Debug("找到更好的方案", slog.Int("generation", generation), slog.Int64("score", best))
			}
		}

		if time.Since(lastReport) >= s.parameters.ReportInterval {
			publish(Progress{
				Generation:     generation,
				BestScore:      best,
				Accepted:       accepted,
				Rejected:       rejected,
				PopulationSize: len(s.population),
				Elapsed:        time.Since(start),
			})
			lastReport = time.Now()
		}
	}

	// 选出第一个得分等于最好分数的个体
	var chosen *individual
	for _, ind := range s.population {
		if ind.score == best {
			chosen = ind
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: 种群中没有得分为 %d 的个体", ErrInvariantViolation, best)
	}

	elapsed := time.Since(start)
	publish(Progress{
		Generation:     generation,
		BestScore:      best,
		Accepted:       accepted,
		Rejected:       rejected,
		PopulationSize: len(s.population),
		Elapsed:        elapsed,
		Done:           true,
	})

	s.logger.Info("搜索结束",
		slog.Int("generations", generation),
		slog.Int64("best", best),
		slog.Bool("aborted", aborted),
		slog.Duration("elapsed", elapsed),
	)

	return &Result{
		Plan:        chosen.plan.Clone(),
		Score:       best,
		Generations: generation,
		Aborted:     aborted,
		Elapsed:     elapsed,
	}, nil
}

// step 让种群中的每个个体各自演化一代，返回被接受的变异数量
// 每个 worker 只修改自己负责的个体，本代结束后再统一汇总
func (s *Scheduler) step() (int, error) {
	workers := s.parameters.Workers
	chunkSize := (len(s.population) + workers - 1) / workers
	accepted := make([]int, workers)

	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		start, end := w*chunkSize, min((w+1)*chunkSize, len(s.population))
		if start >= end {
			break
		}
		w := w
		g.Go(func() error {
			for i := start; i < end; i++ {
				ok, err := s.population[i].improve(s.ref)
				if err != nil {
					return err
				}
				if ok {
					accepted[w]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range accepted {
		total += n
	}
	return total, nil
}

func (s *Scheduler) report(ctx context.Context, p Progress) {
	for _, r := range s.reporters {
		r.Report(ctx, p)
	}
}
