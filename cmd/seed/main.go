package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/seed"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/utils"
)

func main() {
	var op int
	var workshops, users, registrations int
	var seedValue int64
	var in, out, csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 生成随机输入数据, 2: 将报名表合并到输入数据中)")
	flag.IntVar(&workshops, "workshops", 30, "随机生成的工作坊数量")
	flag.IntVar(&users, "users", 200, "随机生成的用户数量")
	flag.IntVar(&registrations, "registrations", 800, "随机生成的报名记录数量（重复的记录会被丢弃）")
	flag.Int64Var(&seedValue, "seed", 0, "随机种子，0 表示使用当前时间")
	flag.StringVar(&in, "in", "", "要合并报名表的输入数据文件")
	flag.StringVar(&csvPath, "csv", "", "报名表 CSV 文件，表头需包含 uid 和 wid")
	flag.StringVar(&out, "out", "data.json", "输出文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	switch op {
	case 0:
		slog.Error("未指定操作")
		os.Exit(1)
	case 1:
		if workshops <= 0 || users < 0 || registrations < 0 {
			slog.Error("请输入合法的数量")
			os.Exit(1)
		}
		if seedValue == 0 {
			seedValue = time.Now().UnixNano()
		}

		snapshot := utils.GenerateRandomSnapshot(rand.New(rand.NewSource(seedValue)), workshops, users, registrations)
		if err := utils.WriteSnapshotFile(out, snapshot); err != nil {
			slog.Error("无法写入输入数据", slog.String("error", err.Error()))
			os.Exit(1)
		}

		slog.Info("生成输入数据成功",
			slog.String("out", out),
			slog.Int64("seed", seedValue),
			slog.Int("workshops", len(snapshot.Workshops)),
			slog.Int("users", len(snapshot.Users)),
			slog.Int("participation", len(snapshot.Participation)),
		)
	case 2:
		if in == "" || csvPath == "" {
			slog.Error("请指定输入数据文件和报名表文件")
			os.Exit(1)
		}

		snapshot, err := utils.ReadSnapshotFile(in)
		if err != nil {
			slog.Error("无法读取输入数据", slog.String("error", err.Error()))
			os.Exit(1)
		}

		file, err := os.Open(csvPath)
		if err != nil {
			slog.Error("打开文件失败", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer file.Close()

		added, err := seed.MergeParticipationCSV(snapshot, file)
		if err != nil {
			slog.Error("合并报名表失败", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if err := utils.WriteSnapshotFile(out, snapshot); err != nil {
			slog.Error("无法写入输入数据", slog.String("error", err.Error()))
			os.Exit(1)
		}

		slog.Info("合并报名表成功", slog.Int("added", added), slog.String("out", out))
	default:
		slog.Error("指定的操作非法", slog.Any("op", op))
		os.Exit(1)
	}
}
