package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

func ReadSnapshot(r io.Reader) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{}
	if err := json.NewDecoder(r).Decode(snapshot); err != nil {
		return nil, fmt.Errorf("无法解析输入数据: %w", err)
	}
	return snapshot, nil
}

func ReadSnapshotFile(path string) (*domain.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSnapshot(file)
}

func WriteSnapshotFile(path string, snapshot *domain.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ParseBlockTable 解析排班程序最后输出的时间块表（嵌套列表，同时也是 JSON）
func ParseBlockTable(data []byte) (domain.BlockTable, error) {
	var table domain.BlockTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("无法解析时间块表: %w", err)
	}
	for i := range table {
		if table[i] == nil {
			table[i] = []int64{}
		}
	}
	return table, nil
}
