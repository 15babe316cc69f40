package repository

import (
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/config"
)

var ErrWorkshopNotFound = errors.New("工作坊不存在")

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}
