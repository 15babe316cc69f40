package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

var requiredHeaders = []string{"uid", "wid"}

// MergeParticipationCSV 把报名表（表头至少包含 uid 和 wid 两列）合并到 snapshot 中，
// 已存在的报名记录会被跳过，返回新增的记录数量
func MergeParticipationCSV(s *domain.Snapshot, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("读取表头失败: %w", err)
	}

	columns := make(map[string]int)
	for i, header := range headers {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, key := range requiredHeaders {
		if _, exists := columns[key]; !exists {
			return 0, fmt.Errorf("没有找到 %s 列", key)
		}
	}

	existing := make(map[domain.Participation]bool, len(s.Participation))
	for _, p := range s.Participation {
		existing[p] = true
	}

	added := 0
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return added, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		uid, err := strconv.ParseInt(strings.TrimSpace(row[columns["uid"]]), 10, 64)
		if err != nil {
			return added, fmt.Errorf("第 %d 行的 uid 无效: %w", line, err)
		}
		wid, err := strconv.ParseInt(strings.TrimSpace(row[columns["wid"]]), 10, 64)
		if err != nil {
			return added, fmt.Errorf("第 %d 行的 wid 无效: %w", line, err)
		}

		p := domain.Participation{UserID: uid, WorkshopID: wid}
		if existing[p] {
			continue
		}
		if !slices.ContainsFunc(s.Users, func(u domain.User) bool { return u.ID == uid }) {
			slog.Warn("报名表中的用户不存在，已跳过", "line", line, "uid", uid)
			continue
		}

		existing[p] = true
		s.Participation = append(s.Participation, p)
		added++
	}

	return added, nil
}
