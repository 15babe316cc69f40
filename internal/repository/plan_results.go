package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

// SavePlanResult 把每个工作坊的时间块写回 workshops 表，并记录这次排班的结果
func (r *Repository) SavePlanResult(result *domain.PlanResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE workshops SET block = $1, version = version + 1 WHERE id = $2`
	for block, wids := range result.Blocks {
		for _, wid := range wids {
			res, err := tx.ExecContext(ctx, query, block, wid)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %d", ErrWorkshopNotFound, wid)
			}
		}
	}

	blocks, err := json.Marshal(result.Blocks)
	if err != nil {
		return err
	}

	query = `
		INSERT INTO plan_results (score, generations, blocks)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query, result.Score, result.Generations, blocks).Scan(&result.ID, &result.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLatestPlanResult() (*domain.PlanResult, error) {
	query := `
		SELECT id, score, generations, blocks, created_at
		FROM plan_results
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result := &domain.PlanResult{}
	var blocks []byte

	dst := []any{&result.ID, &result.Score, &result.Generations, &blocks, &result.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(blocks, &result.Blocks); err != nil {
		return nil, fmt.Errorf("无法解析时间块表: %w", err)
	}

	return result, nil
}
