package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Validator{
		validate:   validate,
		translator: trans,
	}, nil
}

// ValidateSnapshot 检查导出数据的格式，只返回第一个错误的中文描述
func (v *Validator) ValidateSnapshot(s *domain.Snapshot) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return errors.New(validationErrors[0].Translate(v.translator))
		}
		return err
	}

	return nil
}

// ValidateBlockTable 检查时间块表是否恰好包含 BlockCount 个时间块，且每个工作坊恰好出现一次
func ValidateBlockTable(table domain.BlockTable, workshopIDs []int64) error {
	if len(table) != domain.BlockCount {
		return fmt.Errorf("时间块表应包含 %d 个时间块，实际为 %d", domain.BlockCount, len(table))
	}

	seen := make(map[int64]int)
	for block, wids := range table {
		for _, wid := range wids {
			if prev, exists := seen[wid]; exists {
				return fmt.Errorf("工作坊 %d 同时出现在时间块 %d 和时间块 %d 中", wid, prev, block)
			}
			if !slices.Contains(workshopIDs, wid) {
				return fmt.Errorf("时间块 %d 中的工作坊 %d 不存在", block, wid)
			}
			seen[wid] = block
		}
	}

	for _, wid := range workshopIDs {
		if _, exists := seen[wid]; !exists {
			return fmt.Errorf("工作坊 %d 没有被分配到任何时间块", wid)
		}
	}

	return nil
}
