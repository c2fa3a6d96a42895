package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository persists order aggregates in PostgreSQL using GORM.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository wires a PostgreSQL-backed order repository. Caller
// manages the DB lifecycle; schema setup belongs to platform/migrations.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderRecord struct {
	ID            string    `gorm:"primaryKey;column:id;size:64"`
	TenantID      string    `gorm:"column:tenant_id;size:64;index:idx_orders_tenant"`
	CustomerID    string    `gorm:"column:customer_id;size:64;index"`
	Status        string    `gorm:"column:status;type:varchar(32)"`
	CurrencyCode  string    `gorm:"column:currency_code;type:varchar(8)"`
	SubtotalCents int64     `gorm:"column:subtotal_cents"`
	TaxCents      int64     `gorm:"column:tax_cents"`
	TotalCents    int64     `gorm:"column:total_cents"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID           string         `gorm:"primaryKey;column:id;size:64"`
	OrderID      string         `gorm:"column:order_id;size:64;index:idx_order_items_order"`
	Position     int            `gorm:"column:position"`
	SKUID        string         `gorm:"column:sku_id;size:64"`
	Quantity     int32          `gorm:"column:quantity"`
	LensDesign   *string        `gorm:"column:lens_design"`
	LensMaterial string         `gorm:"column:lens_material"`
	LensCoatings pq.StringArray `gorm:"column:lens_coatings;type:text[]"`
	LensTint     string         `gorm:"column:lens_tint"`
	LensNotes    string         `gorm:"column:lens_notes"`
	FrameID      *string        `gorm:"column:frame_id"`
	FrameColor   string         `gorm:"column:frame_color"`
	FrameSize    string         `gorm:"column:frame_size"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// NextIdentity issues a UUID; collisions are not a practical concern.
func (r *OrderRepository) NextIdentity() string {
	return uuid.NewString()
}

// Create writes the order row and its item rows in one transaction. Embedded
// snapshots are persisted separately by the snapshot repository.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toOrderRecord(order)
	items := toItemRecords(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, order.ID, order.TenantID)
}

// FindByID loads the order for (orderID, tenantID); a tenant mismatch behaves
// exactly like absence.
func (r *OrderRepository) FindByID(ctx context.Context, orderID, tenantID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ? AND tenant_id = ?", orderID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []orderItemRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return record.toDomain(items), nil
}

func (r *OrderRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toOrderRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:            order.ID,
		TenantID:      order.TenantID,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		CurrencyCode:  order.CurrencyCode,
		SubtotalCents: order.SubtotalCents,
		TaxCents:      order.TaxCents,
		TotalCents:    order.TotalCents,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func toItemRecords(order *domain.Order) []orderItemRecord {
	records := make([]orderItemRecord, 0, len(order.Items))
	for position, item := range order.Items {
		record := orderItemRecord{
			ID:       item.ID,
			OrderID:  item.OrderID,
			Position: position,
			SKUID:    item.SKUID,
			Quantity: item.Quantity,
		}
		if lens := item.LensSelection; lens != nil {
			design := lens.Design
			record.LensDesign = &design
			record.LensMaterial = lens.Material
			record.LensCoatings = append(pq.StringArray(nil), lens.Coatings...)
			record.LensTint = lens.Tint
			record.LensNotes = lens.Notes
		}
		if frame := item.FrameSelection; frame != nil {
			frameID := frame.FrameID
			record.FrameID = &frameID
			record.FrameColor = frame.Color
			record.FrameSize = frame.Size
		}
		records = append(records, record)
	}
	return records
}

func (r orderRecord) toDomain(items []orderItemRecord) *domain.Order {
	order := &domain.Order{
		ID:            r.ID,
		TenantID:      r.TenantID,
		CustomerID:    r.CustomerID,
		Status:        domain.Status(r.Status),
		CurrencyCode:  r.CurrencyCode,
		SubtotalCents: r.SubtotalCents,
		TaxCents:      r.TaxCents,
		TotalCents:    r.TotalCents,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Items:         make([]domain.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, item.toDomain())
	}
	return order
}

func (r orderItemRecord) toDomain() domain.OrderItem {
	item := domain.OrderItem{
		ID:       r.ID,
		OrderID:  r.OrderID,
		SKUID:    r.SKUID,
		Quantity: r.Quantity,
	}
	if r.LensDesign != nil {
		item.LensSelection = &domain.LensSelection{
			Design:   *r.LensDesign,
			Material: r.LensMaterial,
			Coatings: append([]string(nil), r.LensCoatings...),
			Tint:     r.LensTint,
			Notes:    r.LensNotes,
		}
	}
	if r.FrameID != nil {
		item.FrameSelection = &domain.FrameSelection{
			FrameID: *r.FrameID,
			Color:   r.FrameColor,
			Size:    r.FrameSize,
		}
	}
	return item
}
