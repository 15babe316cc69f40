package scheduler

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

const BlockCount = domain.BlockCount

type referenceUser struct {
	id             int64
	name           string
	part           []int // 参与（报名或主讲）的工作坊下标，升序
	available      [BlockCount]bool
	availableCount int
}

// Reference 是一次排班的只读参考数据，构建后不再修改，可以被多个 worker 同时读取
type Reference struct {
	workshops     []domain.Workshop
	workshopIndex map[int64]int
	lecturers     [][]int // 工作坊下标 -> 讲师在 users 中的下标
	users         []referenceUser
	userIndex     map[int64]int
}

func NewReference(snapshot *domain.Snapshot) (*Reference, error) {
	ref := &Reference{
		workshops:     make([]domain.Workshop, 0, len(snapshot.Workshops)),
		workshopIndex: make(map[int64]int, len(snapshot.Workshops)),
		lecturers:     make([][]int, len(snapshot.Workshops)),
		users:         make([]referenceUser, 0, len(snapshot.Users)),
		userIndex:     make(map[int64]int, len(snapshot.Users)),
	}

	for _, ws := range snapshot.Workshops {
		if _, exists := ref.workshopIndex[ws.ID]; exists {
			return nil, fmt.Errorf("工作坊 %d 重复出现", ws.ID)
		}
		for _, block := range ws.DisallowedBlocks {
			if block < 0 || block >= BlockCount {
				return nil, fmt.Errorf("工作坊 %d 的禁止时间块 %d 越界", ws.ID, block)
			}
		}
		ref.workshopIndex[ws.ID] = len(ref.workshops)
		ref.workshops = append(ref.workshops, ws)
	}

	for _, u := range snapshot.Users {
		if _, exists := ref.userIndex[u.ID]; exists {
			return nil, fmt.Errorf("用户 %d 重复出现", u.ID)
		}
		// 每个用户默认在全部时间块都有空
		ru := referenceUser{
			id:             u.ID,
			name:           u.Name,
			availableCount: BlockCount,
		}
		for b := range ru.available {
			ru.available[b] = true
		}
		ref.userIndex[u.ID] = len(ref.users)
		ref.users = append(ref.users, ru)
	}

	parts := make([]map[int]struct{}, len(ref.users))
	addPart := func(userID int64, wsIdx int) error {
		uIdx, ok := ref.userIndex[userID]
		if !ok {
			return fmt.Errorf("用户 %d 不在传入的 users 数组中", userID)
		}
		if parts[uIdx] == nil {
			parts[uIdx] = make(map[int]struct{})
		}
		parts[uIdx][wsIdx] = struct{}{}
		return nil
	}

	for _, p := range snapshot.Participation {
		wsIdx, ok := ref.workshopIndex[p.WorkshopID]
		if !ok {
			// 报名了不参与排班的工作坊，直接忽略
			continue
		}
		if err := addPart(p.UserID, wsIdx); err != nil {
			return nil, err
		}
	}

	// 讲师也算作自己工作坊的参与者
	for wsIdx, ws := range ref.workshops {
		for _, lecturerID := range ws.Lecturers {
			if err := addPart(lecturerID, wsIdx); err != nil {
				return nil, fmt.Errorf("工作坊 %d 的讲师: %w", ws.ID, err)
			}
			ref.lecturers[wsIdx] = append(ref.lecturers[wsIdx], ref.userIndex[lecturerID])
		}
	}

	for uIdx, set := range parts {
		part := make([]int, 0, len(set))
		for wsIdx := range set {
			part = append(part, wsIdx)
		}
		slices.Sort(part)
		ref.users[uIdx].part = part
	}

	return ref, nil
}

func (r *Reference) WorkshopCount() int {
	return len(r.workshops)
}

func (r *Reference) UserCount() int {
	return len(r.users)
}

// WorkshopIDs 按输入顺序返回所有工作坊 ID
func (r *Reference) WorkshopIDs() []int64 {
	ids := make([]int64, len(r.workshops))
	for i, ws := range r.workshops {
		ids[i] = ws.ID
	}
	return ids
}

func (r *Reference) Workshop(wid int64) (domain.Workshop, bool) {
	idx, ok := r.workshopIndex[wid]
	if !ok {
		return domain.Workshop{}, false
	}
	return r.workshops[idx], true
}

func (r *Reference) workshopOrdinal(wid int64) (int, bool) {
	idx, ok := r.workshopIndex[wid]
	return idx, ok
}

// Participation 返回用户参与的工作坊 ID（报名与主讲的并集）
func (r *Reference) Participation(uid int64) ([]int64, bool) {
	uIdx, ok := r.userIndex[uid]
	if !ok {
		return nil, false
	}
	ids := make([]int64, len(r.users[uIdx].part))
	for i, wsIdx := range r.users[uIdx].part {
		ids[i] = r.workshops[wsIdx].ID
	}
	return ids, true
}
