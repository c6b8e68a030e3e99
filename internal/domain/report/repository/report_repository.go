package repository

import (
	"context"
	"errors"
	"vibelog/internal/domain/report/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id uint) (*model.Report, error)
	// LockByID 事务内加行锁读取，串行化同一举报的状态变更
	LockByID(ctx context.Context, id uint) (*model.Report, error)
	ListByStatus(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error)
	ListByReporter(ctx context.Context, reporterID uint, offset, limit int) ([]model.Report, int64, error)
	UpdateStatus(ctx context.Context, id uint, status model.Status) error
	WithTx(tx *gorm.DB) ReportRepository
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) WithTx(tx *gorm.DB) ReportRepository {
	if tx == nil {
		return r
	}
	return &reportRepository{db: tx}
}

// Create 目标在校验后被并发删除时返回对应实体的 NotFound
func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			if report.PostID != nil {
				return apperr.NotFound(apperr.EntityPost, *report.PostID)
			}
			if report.CommentID != nil {
				return apperr.NotFound(apperr.EntityComment, *report.CommentID)
			}
			return apperr.NotFound(apperr.EntityUser, report.ReporterID)
		}
		return err
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*model.Report, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *reportRepository) LockByID(ctx context.Context, id uint) (*model.Report, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *reportRepository) first(db *gorm.DB, id uint) (*model.Report, error) {
	var report model.Report
	if err := db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityReport, id)
		}
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByStatus(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&model.Report{}).Where("status = ?", status), offset, limit)
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID uint, offset, limit int) ([]model.Report, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&model.Report{}).Where("reporter_id = ?", reporterID), offset, limit)
}

func (r *reportRepository) list(query *gorm.DB, offset, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("reported_at desc, id desc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status model.Status) error {
	res := r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.EntityReport, id)
	}
	return nil
}
