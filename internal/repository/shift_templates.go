// Package repository 提供班次模板与员工目录的数据访问
package repository

import (
	"database/sql"
	"fmt"

	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/timeofday"

	"go.uber.org/zap"
)

// ShiftTemplateRepository 班次模板仓库
//
// 模板每次运行加载一次；时间列在库中以 "HH:MM:SS" 文本存储，
// 加载时统一解析为规范化的秒数表示。
type ShiftTemplateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShiftTemplateRepository 创建班次模板仓库
func NewShiftTemplateRepository(db *sql.DB, logger *zap.Logger) *ShiftTemplateRepository {
	return &ShiftTemplateRepository{
		db:     db,
		logger: logger,
	}
}

// GetAllTemplates 加载全部班次模板（按代码为键）
func (r *ShiftTemplateRepository) GetAllTemplates() (map[string]models.ShiftTemplate, error) {
	query := `
		SELECT
			code, label,
			check_in_start, check_in_end, shift_start, on_time_cutoff, late_threshold,
			check_out_start, check_out_end, expected_check_out,
			break_search_start, break_search_end, break_checkpoint, expected_break_out,
			break_midpoint, min_break_gap_minutes, break_end, break_on_time_cutoff, break_late_threshold
		FROM shift_templates
		ORDER BY code
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift templates: %w", err)
	}
	defer rows.Close()

	templates := make(map[string]models.ShiftTemplate)
	for rows.Next() {
		var (
			tpl  models.ShiftTemplate
			raw  [16]string
			gaps int
		)
		err := rows.Scan(
			&tpl.Code, &tpl.Label,
			&raw[0], &raw[1], &raw[2], &raw[3], &raw[4],
			&raw[5], &raw[6], &raw[7],
			&raw[8], &raw[9], &raw[10], &raw[11],
			&raw[12], &gaps, &raw[13], &raw[14], &raw[15],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift template: %w", err)
		}

		fields := []*timeofday.TimeOfDay{
			&tpl.CheckInStart, &tpl.CheckInEnd, &tpl.ShiftStart, &tpl.OnTimeCutoff, &tpl.LateThreshold,
			&tpl.CheckOutStart, &tpl.CheckOutEnd, &tpl.ExpectedCheckOutTime,
			&tpl.BreakSearchStart, &tpl.BreakSearchEnd, &tpl.BreakCheckpoint, &tpl.ExpectedBreakOutTime,
			&tpl.BreakMidpoint, &tpl.BreakEndTime, &tpl.BreakOnTimeCutoff, &tpl.BreakLateThreshold,
		}
		for i, dst := range fields {
			t, err := timeofday.Parse(raw[i])
			if err != nil {
				return nil, fmt.Errorf("invalid time in template %s: %w", tpl.Code, err)
			}
			*dst = t
		}
		tpl.MinimumBreakGapMin = gaps

		templates[tpl.Code] = tpl
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift templates: %w", err)
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("no shift templates configured")
	}

	r.logger.Debug("Loaded shift templates", zap.Int("count", len(templates)))
	return templates, nil
}
