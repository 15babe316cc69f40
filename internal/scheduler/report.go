package scheduler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

// WriteReport 输出最终结果的诊断报告，最后一行是可以重新导入的时间块表
func WriteReport(w io.Writer, ref *Reference, res *Result) error {
	if res.Aborted {
		fmt.Fprintln(w, "ABORTED")
	}

	if _, err := Evaluate(ref, res.Plan, w); err != nil {
		return err
	}
	if err := Describe(w, ref, res.Plan); err != nil {
		return err
	}

	fmt.Fprintf(w, "迭代次数: %d\n", res.Generations)
	fmt.Fprintf(w, "得分: %d\n", res.Score)
	fmt.Fprintln(w, "时间块表:")
	_, err := fmt.Fprintln(w, FormatTable(res.Plan.Table()))
	return err
}

// Describe 列出每个用户的时间冲突，以及每个时间块中各工作坊的参与情况
func Describe(w io.Writer, ref *Reference, p *Plan) error {
	if !p.Complete() || p.ref != ref {
		return fmt.Errorf("%w: 无法描述不完整的方案", ErrMissingWorkshop)
	}

	// userCounts[u][b] 为用户 u 在时间块 b 中参与的工作坊数量（只统计有空的时间块）
	userCounts := make([][BlockCount]int, len(ref.users))
	for uIdx, u := range ref.users {
		for _, wsIdx := range u.part {
			block := p.blocks[wsIdx]
			if u.available[block] {
				userCounts[uIdx][block]++
			}
		}
	}

	for uIdx, u := range ref.users {
		printed := false
		for block := 0; block < BlockCount; block++ {
			if !u.available[block] || userCounts[uIdx][block] <= 1 {
				continue
			}
			if !printed {
				fmt.Fprintf(w, " * %s 报名了 %d 个工作坊\n", u.name, len(u.part))
				printed = true
			}
			names := make([]string, 0, userCounts[uIdx][block])
			for _, wsIdx := range u.part {
				if int(p.blocks[wsIdx]) == block {
					names = append(names, strconv.Quote(ref.workshops[wsIdx].Name))
				}
			}
			fmt.Fprintf(w, "   %d 个冲突: [%s]\n", len(names), strings.Join(names, ", "))
		}
	}

	// participants[ws] 为参与该工作坊的用户下标
	participants := make([][]int, len(ref.workshops))
	for uIdx, u := range ref.users {
		for _, wsIdx := range u.part {
			participants[wsIdx] = append(participants[wsIdx], uIdx)
		}
	}

	collisionSum, collisionUserSum := 0, 0
	table := p.Table()
	for block, wids := range table {
		fmt.Fprintf(w, "时间块 %d\n", block)
		for _, wid := range wids {
			wsIdx := ref.workshopIndex[wid]
			willing, today, collisions, collisionUsers := 0, 0, 0, 0
			for _, uIdx := range participants[wsIdx] {
				willing++
				if !ref.users[uIdx].available[block] {
					continue
				}
				today++
				if others := userCounts[uIdx][block] - 1; others > 0 {
					collisions += others
					collisionUsers++
				}
			}
			collisionSum += collisions
			collisionUserSum += collisionUsers

			fmt.Fprintf(w, " * %d %s - %s\n", wid, ref.workshops[wsIdx].Name, ref.lecturerName(wsIdx))
			fmt.Fprintf(w, "   当天/报名 参与人数: %d / %d\n", today, willing)
			fmt.Fprintf(w, "   冲突次数 / 冲突人数: %d / %d\n", collisions, collisionUsers)
		}
		fmt.Fprintln(w, "-------")
	}
	_, err := fmt.Fprintf(w, "冲突总数 = %d, 冲突人数总计 = %d\n", collisionSum, collisionUserSum)
	return err
}

// FormatTable 把时间块表格式化为嵌套列表，例如 [[1, 2], [3], [], [], [], []]
// 输出同时也是合法的 JSON，可以直接被网站后台导入
func FormatTable(table domain.BlockTable) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, wids := range table {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for j, wid := range wids {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatInt(wid, 10))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// 工作坊第一位讲师的名字，没有讲师时返回 "-"
func (r *Reference) lecturerName(wsIdx int) string {
	if len(r.lecturers[wsIdx]) == 0 {
		return "-"
	}
	return r.users[r.lecturers[wsIdx][0]].name
}
