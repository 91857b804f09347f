package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderwatch/backend/internal/domain/order"
	"github.com/orderwatch/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.Repository = (*GormOrderRepository)(nil)

// Upsert inserts the order or, when a row with the same order ID already
// exists, overwrites it with the latest values.
func (r *GormOrderRepository) Upsert(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	var model models.OrderModel
	model.FromDomain(o)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "ordered_at", "total_amount", "attributes", "updated_at",
			}),
		}).
		Create(&model).Error
}

// FindByOrderID finds an order by its vendor order ID
func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns stored orders, most recently ordered first
func (r *GormOrderRepository) List(ctx context.Context, limit, offset int) ([]order.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Order("ordered_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// CountByStatus returns the number of stored orders per canonical status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.CanonicalStatus]int, error) {
	type statusCount struct {
		Status string
		Count  int
	}

	var counts []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	result := make(map[order.CanonicalStatus]int, len(counts))
	for _, c := range counts {
		result[order.CanonicalStatus(c.Status)] = c.Count
	}
	return result, nil
}
