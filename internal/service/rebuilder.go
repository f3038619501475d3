// Package service 提供考勤重建服务的装配与生命周期管理
package service

import (
	"context"
	"database/sql"
	"fmt"

	"attendance-rebuilder/internal/cache"
	"attendance-rebuilder/internal/config"
	"attendance-rebuilder/internal/consumer"
	"attendance-rebuilder/internal/database"
	"attendance-rebuilder/internal/evaluator"
	"attendance-rebuilder/internal/models"
	"attendance-rebuilder/internal/pipeline"
	"attendance-rebuilder/internal/redisutil"
	"attendance-rebuilder/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RebuilderService 考勤重建服务
type RebuilderService struct {
	config       *config.Config
	logger       *zap.Logger
	db           *sql.DB
	redisClient  *redis.Client
	templateRepo *repository.ShiftTemplateRepository
	employeeRepo *repository.EmployeeRepository
	templates    *cache.TemplateCache
	consumer     *consumer.SwipeConsumer
}

// NewRebuilderService 创建考勤重建服务
func NewRebuilderService(cfg *config.Config, logger *zap.Logger) (*RebuilderService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redisutil.NewClient(&cfg.Redis)
	if err := redisutil.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := &RebuilderService{
		config:       cfg,
		logger:       logger,
		db:           db,
		redisClient:  redisClient,
		templateRepo: repository.NewShiftTemplateRepository(db, logger),
		employeeRepo: repository.NewEmployeeRepository(db, logger),
		templates:    cache.NewTemplateCache(cfg, redisClient, logger),
	}
	s.consumer = consumer.NewSwipeConsumer(cfg, redisClient, s, logger)

	return s, nil
}

// Start 启动服务
func (s *RebuilderService) Start(ctx context.Context) error {
	s.logger.Info("Starting attendance rebuilder service")

	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start swipe consumer: %w", err)
	}
	return nil
}

// Stop 停止服务
func (s *RebuilderService) Stop() {
	s.logger.Info("Stopping attendance rebuilder service")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}

	s.logger.Info("Attendance rebuilder service stopped")
}

// RunBatch 执行一个刷卡批次的重建（实现 consumer.BatchRunner）
//
// 每个批次用一份新鲜的模板与员工目录快照构建流水线；
// 流水线本身保持纯内存与确定性。
func (s *RebuilderService) RunBatch(ctx context.Context, swipes []pipeline.RawSwipe) (*pipeline.Result, error) {
	templates, err := s.loadTemplates(ctx)
	if err != nil {
		return nil, err
	}

	names, err := s.employeeRepo.GetEmployeeNames()
	if err != nil {
		// 目录不可用只影响展示姓名，不阻塞重建
		s.logger.Warn("Employee directory unavailable, names will be empty", zap.Error(err))
		names = map[string]string{}
	}

	p := pipeline.NewPipeline(pipeline.RunConfig{
		GapThresholdMinutes: s.config.Rebuild.GapThresholdMinutes,
		AllowedStatusCodes:  s.config.Rebuild.AllowedStatusCodes,
		Policy:              evaluator.PolicyName(s.config.Rebuild.Policy),
		OvernightShiftCode:  s.config.Rebuild.OvernightShiftCode,
	}, templates, s.logger)

	return p.Run(swipes, names)
}

// loadTemplates 加载班次模板（缓存优先，未命中回源数据库并回填）
func (s *RebuilderService) loadTemplates(ctx context.Context) (map[string]models.ShiftTemplate, error) {
	cached, err := s.templates.Get(ctx)
	if err != nil {
		s.logger.Warn("Template cache read failed, falling back to database", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	templates, err := s.templateRepo.GetAllTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load shift templates: %w", err)
	}

	if err := s.templates.Set(ctx, templates); err != nil {
		s.logger.Warn("Failed to backfill template cache", zap.Error(err))
	}
	return templates, nil
}
