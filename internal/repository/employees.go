package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// EmployeeRepository 员工目录仓库
//
// 只用于把员工键解析为展示姓名；目录缺失不算错误，
// 流水线会把姓名留空。
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository 创建员工目录仓库
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// GetEmployeeNames 加载员工键到姓名的映射快照
func (r *EmployeeRepository) GetEmployeeNames() (map[string]string, error) {
	query := `
		SELECT employee_key, full_name
		FROM employees
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		names[key] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	r.logger.Debug("Loaded employee directory", zap.Int("count", len(names)))
	return names, nil
}
