package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

// LoadSnapshot 在同一个事务中读取排班所需的全部数据，保证各张表之间的一致性
func (r *Repository) LoadSnapshot() (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	snapshot := &domain.Snapshot{
		Workshops:     make([]domain.Workshop, 0),
		Users:         make([]domain.User, 0),
		Participation: make([]domain.Participation, 0),
	}

	// 工作坊
	workshopIndex := make(map[int64]int)
	query := `SELECT id, name FROM workshops ORDER BY id`
	if err := queryRows(ctx, tx, query, func(rows *sql.Rows) error {
		var ws domain.Workshop
		if err := rows.Scan(&ws.ID, &ws.Name); err != nil {
			return err
		}
		ws.Lecturers = make([]int64, 0)
		ws.DisallowedBlocks = make([]int, 0)
		workshopIndex[ws.ID] = len(snapshot.Workshops)
		snapshot.Workshops = append(snapshot.Workshops, ws)
		return nil
	}); err != nil {
		return nil, err
	}

	// 讲师，position 决定谁是主讲
	query = `SELECT workshop_id, lecturer_id FROM workshop_lecturers ORDER BY workshop_id, position`
	if err := queryRows(ctx, tx, query, func(rows *sql.Rows) error {
		var wid, uid int64
		if err := rows.Scan(&wid, &uid); err != nil {
			return err
		}
		if i, exists := workshopIndex[wid]; exists {
			snapshot.Workshops[i].Lecturers = append(snapshot.Workshops[i].Lecturers, uid)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// 禁止的时间块
	query = `SELECT workshop_id, block FROM workshop_disallowed_blocks ORDER BY workshop_id, block`
	if err := queryRows(ctx, tx, query, func(rows *sql.Rows) error {
		var wid int64
		var block int
		if err := rows.Scan(&wid, &block); err != nil {
			return err
		}
		if i, exists := workshopIndex[wid]; exists {
			snapshot.Workshops[i].DisallowedBlocks = append(snapshot.Workshops[i].DisallowedBlocks, block)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// 用户
	query = `SELECT id, name FROM users ORDER BY id`
	if err := queryRows(ctx, tx, query, func(rows *sql.Rows) error {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name); err != nil {
			return err
		}
		snapshot.Users = append(snapshot.Users, user)
		return nil
	}); err != nil {
		return nil, err
	}

	// 报名情况
	query = `SELECT user_id, workshop_id FROM workshop_participants ORDER BY user_id, workshop_id`
	if err := queryRows(ctx, tx, query, func(rows *sql.Rows) error {
		var p domain.Participation
		if err := rows.Scan(&p.UserID, &p.WorkshopID); err != nil {
			return err
		}
		snapshot.Participation = append(snapshot.Participation, p)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func queryRows(ctx context.Context, tx *sql.Tx, query string, scan func(rows *sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}
