package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/handler"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/publisher"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/status"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "用法: %s <data.json>\n", os.Args[0])
		return 1
	}

	/**********************************************
	 * 创建 logger
	 * 标准输出只用于进度和最终报告，日志写到标准错误
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return 1
	}

	/**********************************************
	 * 读取并检查输入数据
	 **********************************************/
	snapshot, err := utils.ReadSnapshotFile(os.Args[1])
	if err != nil {
		logger.Error("无法读取输入数据", "path", os.Args[1], "error", err)
		return 1
	}

	v, err := utils.NewValidator()
	if err != nil {
		logger.Error("无法创建校验器", "error", err)
		return 1
	}
	if err := v.ValidateSnapshot(snapshot); err != nil {
		logger.Error("输入数据格式错误", "error", err)
		return 1
	}

	ref, err := scheduler.NewReference(snapshot)
	if err != nil {
		logger.Error("输入数据不一致", "error", err)
		return 1
	}

	/**********************************************
	 * 进度汇报
	 **********************************************/
	m := metrics.New()
	tracker := status.NewTracker()
	reporters := []scheduler.Reporter{
		scheduler.ReporterFunc(func(_ context.Context, p scheduler.Progress) {
			if !p.Done {
				fmt.Printf("第 %d 代 最高得分: %d\n", p.Generation, p.BestScore)
			}
		}),
		m,
		tracker,
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		rr := status.NewRedisReporter(
			rdb,
			cfg.Redis.StatusKey,
			time.Duration(cfg.Redis.StatusExpiration)*time.Second,
			time.Duration(cfg.Redis.OperationTimeout)*time.Second,
			logger,
		)
		defer rr.Close() // 在 rdb.Close 之前写入最后的进度
		reporters = append(reporters, rr)
	}

	/**********************************************
	 * 启动状态服务
	 **********************************************/
	var srv *http.Server
	if cfg.Status.Addr != "" {
		h := handler.NewHandler(tracker, m.Handler())
		h.RegisterRoutes()

		srv = &http.Server{
			Addr:         cfg.Status.Addr,
			Handler:      h.Mux,
			IdleTimeout:  time.Duration(cfg.Status.IdleTimeout) * time.Second,
			ReadTimeout:  time.Duration(cfg.Status.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Status.WriteTimeout) * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		}

		go func() {
			logger.Info("正在启动状态服务...", "addr", cfg.Status.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("无法启动状态服务", slog.String("error", err.Error()))
			}
		}()
	}

	/**********************************************
	 * 搜索，直到收到 CTRL+C 或达到最大迭代次数
	 **********************************************/
	s, err := scheduler.New(&scheduler.Parameters{
		PopulationSize: cfg.Planner.PopulationSize,
		Workers:        cfg.Planner.Workers,
		Seed:           cfg.Planner.Seed,
		ReportInterval: time.Duration(cfg.Planner.ReportInterval) * time.Second,
		MaxGenerations: cfg.Planner.MaxGenerations,
	}, ref, logger, reporters...)
	if err != nil {
		logger.Error("无法创建排班器", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		// 再次按下 CTRL+C 时直接退出
		stop()
	}()

	res, err := s.Run(ctx)
	stop()
	if err != nil {
		logger.Error("排班失败", "error", err, "seed", s.Seed())
		return 1
	}
	tracker.SetResult(res)

	var report bytes.Buffer
	if err := scheduler.WriteReport(&report, ref, res); err != nil {
		logger.Error("无法生成报告", "error", err)
		return 1
	}

	/**********************************************
	 * 交付结果
	 **********************************************/
	table := res.Plan.Table()
	if err := utils.ValidateBlockTable(table, ref.WorkshopIDs()); err != nil {
		logger.Error("排班结果不合法", "error", err)
		return 1
	}

	result := &domain.PlanResult{
		Score:       res.Score,
		Generations: res.Generations,
		Blocks:      table,
		CreatedAt:   time.Now(),
	}

	if cfg.Database.DSN != "" {
		if err := saveResult(cfg, result); err != nil {
			logger.Error("无法保存排班结果", "error", err)
		} else {
			logger.Info("排班结果已保存", "id", result.ID)
		}
	}

	if cfg.RabbitMQ.DSN != "" {
		mailData := &domain.PlanResultMailData{
			Score:       res.Score,
			Generations: res.Generations,
			Aborted:     res.Aborted,
			Table:       scheduler.FormatTable(table),
			Report:      report.String(),
		}
		if err := publishResult(cfg, result, mailData); err != nil {
			logger.Error("无法发布排班结果", "error", err)
		}
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Status.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("关闭状态服务失败", slog.String("error", err.Error()))
		}
	}

	// 时间块表必须是标准输出的最后一行
	if _, err := os.Stdout.Write(report.Bytes()); err != nil {
		logger.Error("无法输出报告", "error", err)
		return 1
	}

	return 0
}

func saveResult(cfg *config.Config, result *domain.PlanResult) error {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		return err
	}

	return repository.NewRepository(cfg, dbpool).SavePlanResult(result)
}

func publishResult(cfg *config.Config, result *domain.PlanResult, mailData *domain.PlanResultMailData) error {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, queue := range []string{cfg.RabbitMQ.ResultQueue, cfg.RabbitMQ.MailQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("无法声明队列 %s: %w", queue, err)
		}
	}

	pub := publisher.New(ch, cfg.RabbitMQ.ResultQueue, cfg.RabbitMQ.MailQueue, cfg.Email.Organizer, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	return pub.PublishResult(context.Background(), result, mailData)
}
