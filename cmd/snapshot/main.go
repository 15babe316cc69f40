package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op, out, tablePath string
	var score int64
	var generations int

	flag.StringVar(&op, "op", "", "要执行的操作 (export: 导出输入数据, import: 导入时间块表, latest: 查看最近一次的排班结果)")
	flag.StringVar(&out, "out", "data.json", "导出的文件")
	flag.StringVar(&tablePath, "table", "", "要导入的时间块表文件（排班程序输出的最后一行）")
	flag.Int64Var(&score, "score", 0, "导入的时间块表对应的得分")
	flag.IntVar(&generations, "generations", 0, "导入的时间块表对应的迭代次数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 在连接数据库之前检查操作
	if err := checkOp(op); err != nil {
		logger.Error("指定的操作非法", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Database.DSN == "" {
		logger.Error("未配置 DATABASE_DSN")
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case "export":
		snapshot, err := repo.LoadSnapshot()
		if err != nil {
			slog.Error("无法读取输入数据", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := utils.WriteSnapshotFile(out, snapshot); err != nil {
			slog.Error("无法写入文件", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("导出输入数据成功", slog.String("out", out), slog.Int("workshops", len(snapshot.Workshops)))
	case "import":
		if tablePath == "" {
			slog.Error("请指定时间块表文件")
			os.Exit(1)
		}
		data, err := os.ReadFile(tablePath)
		if err != nil {
			slog.Error("无法读取时间块表", slog.String("error", err.Error()))
			os.Exit(1)
		}
		table, err := utils.ParseBlockTable(data)
		if err != nil {
			slog.Error("无法解析时间块表", slog.String("error", err.Error()))
			os.Exit(1)
		}

		// 时间块表必须覆盖数据库中的全部工作坊
		snapshot, err := repo.LoadSnapshot()
		if err != nil {
			slog.Error("无法读取输入数据", slog.String("error", err.Error()))
			os.Exit(1)
		}
		workshopIDs := make([]int64, 0, len(snapshot.Workshops))
		for _, ws := range snapshot.Workshops {
			workshopIDs = append(workshopIDs, ws.ID)
		}
		if err := utils.ValidateBlockTable(table, workshopIDs); err != nil {
			slog.Error("时间块表不合法", slog.String("error", err.Error()))
			os.Exit(1)
		}

		result := &domain.PlanResult{Score: score, Generations: generations, Blocks: table}
		if err := repo.SavePlanResult(result); err != nil {
			slog.Error("无法保存排班结果", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("导入时间块表成功", slog.Int64("id", result.ID))
	case "latest":
		result, err := repo.GetLatestPlanResult()
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("还没有任何排班结果")
			default:
				slog.Error("无法获取排班结果", slog.String("error", err.Error()))
			}
			os.Exit(1)
		}
		slog.Info("最近一次的排班结果",
			slog.Int64("id", result.ID),
			slog.Int64("score", result.Score),
			slog.Int("generations", result.Generations),
			slog.Time("created_at", result.CreatedAt),
			slog.String("table", scheduler.FormatTable(result.Blocks)),
		)
	default:
		slog.Error("指定的操作非法", slog.Any("op", op))
		os.Exit(1)
	}
}

var ops = []string{"export", "import", "latest"}

func checkOp(op string) error {
	if !slices.Contains(ops, op) {
		return fmt.Errorf("未知的操作 %q，可选: %v", op, ops)
	}
	return nil
}
