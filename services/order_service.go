package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderInput carries the editable fields of an order form. Nil selections
// mean "none selected".
type OrderInput struct {
	ClientName        string
	Phone             *string
	Location          *string
	MaterialID        *uint
	MaterialQty       *decimal.Decimal
	ServiceID         *uint
	MachineID         *uint
	AdditionalCharges *decimal.Decimal
	Status            *string
	StaffIDs          []uint
}

// PaymentInput carries a payment to record against an order.
type PaymentInput struct {
	PaymentMode string
	Amount      decimal.Decimal
	PaymentDate *time.Time
}

// OrderFilter narrows the order list and board. From is inclusive, To is
// exclusive.
type OrderFilter struct {
	Search string
	Status string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// OrderView is an order with its references resolved and its balance derived.
type OrderView struct {
	models.Order
	MaterialName *string         `json:"material_name"`
	ServiceName  *string         `json:"service_name"`
	MachineName  *string         `json:"machine_name"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// OrderService runs order operations against the store. Every mutation runs
// in a single transaction and re-reads the order afterwards.
type OrderService struct {
	db       *gorm.DB
	pipeline *Pipeline
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates an order service. A nil pipeline allows every transition.
func NewOrderService(db *gorm.DB, pipeline *Pipeline, logger *zap.Logger) *OrderService {
	if pipeline == nil {
		pipeline = NewPipeline(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{db: db, pipeline: pipeline, logger: logger, now: time.Now}
}

// Pipeline exposes the status pipeline the service enforces.
func (s *OrderService) Pipeline() *Pipeline {
	return s.pipeline
}

// Quote prices a set of selections without writing anything.
func (s *OrderService) Quote(ctx context.Context, in OrderInput) (Quote, error) {
	if err := validateSelections(in); err != nil {
		return Quote{}, err
	}
	db := s.db.WithContext(ctx)
	material, err := findMaterial(db, in.MaterialID, true)
	if err != nil {
		return Quote{}, err
	}
	service, err := findService(db, in.ServiceID, true)
	if err != nil {
		return Quote{}, err
	}
	return BuildQuote(material, in.MaterialQty, service, in.AdditionalCharges), nil
}

// Create inserts a new order, priced from its selections, with its initial staff.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*OrderView, error) {
	if err := validateSelections(in); err != nil {
		return nil, err
	}

	order := models.Order{Status: models.StatusLead}
	if in.Status != nil {
		if !models.IsValidOrderStatus(*in.Status) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, *in.Status)
		}
		order.Status = *in.Status
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		material, service, err := resolveSelections(tx, nil, in)
		if err != nil {
			return err
		}
		applyInput(&order, in)
		ApplyPricing(&order, material, service)

		if err := tx.Omit("Staff", "Payments", "Notes").Create(&order).Error; err != nil {
			return err
		}
		if len(in.StaffIDs) > 0 {
			if _, _, err := syncStaff(tx, order.ID, in.StaffIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("client", order.ClientName),
		zap.String("final_price", order.FinalPrice.String()),
	)
	return s.Get(ctx, order.ID)
}

// Update replaces the editable fields of an order and reprices it. A status
// in the input goes through the pipeline like any other status change.
func (s *OrderService) Update(ctx context.Context, id uint, in OrderInput) (*OrderView, error) {
	if err := validateSelections(in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		material, service, err := resolveSelections(tx, order, in)
		if err != nil {
			return err
		}
		if in.Status != nil && *in.Status != order.Status {
			if err := s.pipeline.SetStatus(order, *in.Status); err != nil {
				return err
			}
		}
		applyInput(order, in)
		ApplyPricing(order, material, service)

		if err := tx.Model(order).Select(
			"client_name", "phone", "location",
			"material_id", "material_qty", "service_id", "machine_id",
			"base_price", "additional_charges", "final_price", "status",
		).Updates(order).Error; err != nil {
			return err
		}
		if in.StaffIDs != nil {
			if _, _, err := syncStaff(tx, order.ID, in.StaffIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order updated", zap.Uint("order_id", id))
	return s.Get(ctx, id)
}

// Get loads one order with staff, payments (newest first) and notes.
func (s *OrderService) Get(ctx context.Context, id uint) (*OrderView, error) {
	db := s.db.WithContext(ctx)
	order, err := loadOrder(db.Preload("Staff").
		Preload("Payments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("payment_date DESC").Order("id DESC")
		}).
		Preload("Notes", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}), id)
	if err != nil {
		return nil, err
	}

	views, err := decorate(db, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of orders, newest first, and the total match count.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]OrderView, int64, error) {
	db := s.db.WithContext(ctx)
	query := applyOrderFilter(db.Model(&models.Order{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var orders []models.Order
	if err := applyOrderFilter(db, f).
		Preload("Staff").
		Preload("Payments").
		Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	views, err := decorate(db, orders)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Board returns every matching order, decorated like the list view, bucketed
// into the pipeline columns.
func (s *OrderService) Board(ctx context.Context, f OrderFilter) ([]Column, error) {
	db := s.db.WithContext(ctx)
	var orders []models.Order
	if err := applyOrderFilter(db, f).
		Preload("Staff").
		Preload("Payments").
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	views, err := decorate(db, orders)
	if err != nil {
		return nil, err
	}
	return Board(views), nil
}

// Delete removes an order along with its payments, notes and staff links.
func (s *OrderService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOrder(tx, id); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderStaff{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderNote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.Uint("order_id", id))
	return nil
}

// SetStatus moves an order to a new pipeline stage.
func (s *OrderService) SetStatus(ctx context.Context, id uint, status string) (*OrderView, error) {
	var from string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		from = order.Status
		if err := s.pipeline.SetStatus(order, status); err != nil {
			return err
		}
		return tx.Model(order).Update("status", order.Status).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Uint("order_id", id),
		zap.String("from", from),
		zap.String("to", status),
	)
	return s.Get(ctx, id)
}

// AssignStaff makes staffIDs the exact set of staff on the order. Only the
// difference against the current links is written.
func (s *OrderService) AssignStaff(ctx context.Context, id uint, staffIDs []uint) (*OrderView, error) {
	var added, removed []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOrder(tx, id); err != nil {
			return err
		}
		var err error
		added, removed, err = syncStaff(tx, id, staffIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order staff assigned",
		zap.Uint("order_id", id),
		zap.Uints("added", added),
		zap.Uints("removed", removed),
	)
	return s.Get(ctx, id)
}

// AssignMachine sets or clears the order's machine. Machine status is not
// checked here.
func (s *OrderService) AssignMachine(ctx context.Context, id uint, machineID *uint) (*OrderView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if machineID != nil {
			if err := machineExists(tx, *machineID); err != nil {
				return err
			}
		}
		return tx.Model(order).Update("machine_id", machineID).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ListPayments returns an order's payments, newest payment date first.
func (s *OrderService) ListPayments(ctx context.Context, orderID uint) ([]models.Payment, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOrder(db, orderID); err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := db.Where("order_id = ?", orderID).
		Order("payment_date DESC").Order("id DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// RecordPayment checks the payment against the order's remaining balance and
// stores it. A rejected payment never reaches the store.
func (s *OrderService) RecordPayment(ctx context.Context, orderID uint, in PaymentInput) (*models.Payment, error) {
	mode := strings.ToLower(strings.TrimSpace(in.PaymentMode))
	if mode == "" {
		mode = models.PaymentModeCash
	}
	if !models.IsValidPaymentMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMode, in.PaymentMode)
	}

	payment := models.Payment{
		OrderID:     orderID,
		PaymentMode: mode,
		Amount:      in.Amount,
		PaymentDate: dateOnly(s.now()),
	}
	if in.PaymentDate != nil {
		payment.PaymentDate = dateOnly(*in.PaymentDate)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		var existing []models.Payment
		if err := tx.Where("order_id = ?", orderID).Find(&existing).Error; err != nil {
			return err
		}
		if _, err := RecordPayment(order, existing, payment); err != nil {
			return err
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		if errors.Is(err, ErrPaymentExceedsBalance) || errors.Is(err, ErrInvalidPaymentAmount) {
			s.logger.Warn("payment rejected",
				zap.Uint("order_id", orderID),
				zap.String("amount", in.Amount.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.Uint("order_id", orderID),
		zap.Uint("payment_id", payment.ID),
		zap.String("mode", payment.PaymentMode),
		zap.String("amount", payment.Amount.String()),
	)
	return &payment, nil
}

// DeletePayment removes one payment from an order.
func (s *OrderService) DeletePayment(ctx context.Context, orderID, paymentID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", paymentID, orderID).
		Delete(&models.Payment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	s.logger.Info("payment deleted", zap.Uint("order_id", orderID), zap.Uint("payment_id", paymentID))
	return nil
}

// AddNote appends a follow-up note to an order.
func (s *OrderService) AddNote(ctx context.Context, orderID uint, author *string, text string) (*models.OrderNote, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOrder(db, orderID); err != nil {
		return nil, err
	}
	note := models.OrderNote{OrderID: orderID, Author: author, Text: text}
	if err := db.Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns an order's notes, newest first.
func (s *OrderService) ListNotes(ctx context.Context, orderID uint) ([]models.OrderNote, error) {
	db := s.db.WithContext(ctx)
	if _, err := loadOrder(db, orderID); err != nil {
		return nil, err
	}
	var notes []models.OrderNote
	if err := db.Where("order_id = ?", orderID).Order("created_at DESC").Order("id DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// AttachDesignFile uploads a design file to store and points the order at
// it. The file it replaces is removed afterwards.
func (s *OrderService) AttachDesignFile(ctx context.Context, orderID uint, store DesignFileStore, fileHeader *multipart.FileHeader) (*OrderView, error) {
	if _, err := loadOrder(s.db.WithContext(ctx), orderID); err != nil {
		return nil, err
	}

	key, err := store.Upload(ctx, orderID, fileHeader)
	if err != nil {
		return nil, err
	}

	var previous *string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		previous = order.DesignFileKey
		return tx.Model(order).Update("design_file_key", key).Error
	})
	if err != nil {
		if delErr := store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned design file", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	if previous != nil && *previous != key {
		if err := store.Delete(ctx, *previous); err != nil {
			s.logger.Warn("failed to remove replaced design file", zap.String("key", *previous), zap.Error(err))
		}
	}
	s.logger.Info("design file attached", zap.Uint("order_id", orderID), zap.String("key", key))
	return s.Get(ctx, orderID)
}

func validateSelections(in OrderInput) error {
	if in.MaterialID != nil && in.MaterialQty == nil {
		return ErrMaterialQtyRequired
	}
	if in.MaterialQty != nil {
		if in.MaterialQty.IsNegative() {
			return ErrNegativeQuantity
		}
		if !HasMoneyScale(*in.MaterialQty) {
			return ErrQuantityPrecision
		}
	}
	if in.AdditionalCharges != nil && !HasMoneyScale(*in.AdditionalCharges) {
		return ErrChargesPrecision
	}
	return nil
}

func applyInput(order *models.Order, in OrderInput) {
	order.ClientName = strings.TrimSpace(in.ClientName)
	order.Phone = in.Phone
	order.Location = in.Location
	order.MaterialID = in.MaterialID
	order.MaterialQty = in.MaterialQty
	order.ServiceID = in.ServiceID
	order.MachineID = in.MachineID
	order.AdditionalCharges = decimal.Zero
	if in.AdditionalCharges != nil {
		order.AdditionalCharges = *in.AdditionalCharges
	}
}

// resolveSelections loads the material and service the input points at. A
// newly chosen id must exist; an id the order already carried may dangle and
// then contributes nothing to the price.
func resolveSelections(tx *gorm.DB, current *models.Order, in OrderInput) (*models.Material, *models.Service, error) {
	material, err := findMaterial(tx, in.MaterialID, current == nil || !sameID(current.MaterialID, in.MaterialID))
	if err != nil {
		return nil, nil, err
	}
	service, err := findService(tx, in.ServiceID, current == nil || !sameID(current.ServiceID, in.ServiceID))
	if err != nil {
		return nil, nil, err
	}
	if in.MachineID != nil && (current == nil || !sameID(current.MachineID, in.MachineID)) {
		if err := machineExists(tx, *in.MachineID); err != nil {
			return nil, nil, err
		}
	}
	return material, service, nil
}

func findMaterial(tx *gorm.DB, id *uint, required bool) (*models.Material, error) {
	if id == nil {
		return nil, nil
	}
	var material models.Material
	if err := tx.First(&material, *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if required {
				return nil, ErrMaterialNotFound
			}
			return nil, nil
		}
		return nil, err
	}
	return &material, nil
}

func findService(tx *gorm.DB, id *uint, required bool) (*models.Service, error) {
	if id == nil {
		return nil, nil
	}
	var service models.Service
	if err := tx.First(&service, *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if required {
				return nil, ErrServiceNotFound
			}
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func machineExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Machine{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrMachineNotFound
	}
	return nil
}

func loadOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// syncStaff diffs the requested staff set against the stored links and
// applies only the additions and removals.
func syncStaff(tx *gorm.DB, orderID uint, staffIDs []uint) (added, removed []uint, err error) {
	want := make(map[uint]bool, len(staffIDs))
	for _, id := range staffIDs {
		want[id] = true
	}

	if len(want) > 0 {
		ids := make([]uint, 0, len(want))
		for id := range want {
			ids = append(ids, id)
		}
		var count int64
		if err := tx.Model(&models.Staff{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return nil, nil, err
		}
		if int(count) != len(ids) {
			return nil, nil, ErrStaffNotFound
		}
	}

	var links []models.OrderStaff
	if err := tx.Where("order_id = ?", orderID).Find(&links).Error; err != nil {
		return nil, nil, err
	}
	have := make(map[uint]bool, len(links))
	for _, l := range links {
		have[l.StaffID] = true
		if !want[l.StaffID] {
			removed = append(removed, l.StaffID)
		}
	}
	for _, id := range staffIDs {
		if !have[id] {
			added = append(added, id)
			have[id] = true
		}
	}

	if len(removed) > 0 {
		if err := tx.Where("order_id = ? AND staff_id IN ?", orderID, removed).Delete(&models.OrderStaff{}).Error; err != nil {
			return nil, nil, err
		}
	}
	if len(added) > 0 {
		rows := make([]models.OrderStaff, 0, len(added))
		for _, id := range added {
			rows = append(rows, models.OrderStaff{OrderID: orderID, StaffID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return nil, nil, err
		}
	}
	return added, removed, nil
}

func applyOrderFilter(db *gorm.DB, f OrderFilter) *gorm.DB {
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		db = db.Where("(LOWER(client_name) LIKE ? OR LOWER(COALESCE(phone, '')) LIKE ?)", like, like)
	}
	switch f.Status {
	case "":
	case models.StatusLead:
		// Unknown stored statuses read back as lead.
		db = db.Where("(status = ? OR status NOT IN ?)", models.StatusLead, models.OrderStatuses)
	default:
		db = db.Where("status = ?", f.Status)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at < ?", *f.To)
	}
	return db
}

// decorate resolves reference names and derives balances for a batch of orders.
func decorate(db *gorm.DB, orders []models.Order) ([]OrderView, error) {
	var materialIDs, serviceIDs, machineIDs []uint
	for _, o := range orders {
		if o.MaterialID != nil {
			materialIDs = append(materialIDs, *o.MaterialID)
		}
		if o.ServiceID != nil {
			serviceIDs = append(serviceIDs, *o.ServiceID)
		}
		if o.MachineID != nil {
			machineIDs = append(machineIDs, *o.MachineID)
		}
	}

	materialNames, err := namesByID(db, &models.Material{}, materialIDs)
	if err != nil {
		return nil, err
	}
	serviceNames, err := namesByID(db, &models.Service{}, serviceIDs)
	if err != nil {
		return nil, err
	}
	machineNames, err := namesByID(db, &models.Machine{}, machineIDs)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		if o.Staff == nil {
			o.Staff = []models.Staff{}
		}
		if o.Payments == nil {
			o.Payments = []models.Payment{}
		}
		views[i] = OrderView{
			Order:        o,
			MaterialName: lookupName(materialNames, o.MaterialID),
			ServiceName:  lookupName(serviceNames, o.ServiceID),
			MachineName:  lookupName(machineNames, o.MachineID),
			TotalPaid:    TotalPaid(o.Payments),
			Remaining:    Remaining(&o, o.Payments),
		}
	}
	return views, nil
}

type idName struct {
	ID   uint
	Name string
}

func namesByID(db *gorm.DB, model interface{}, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []idName
	if err := db.Model(model).Select("id", "name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return names, nil
}

func lookupName(names map[uint]string, id *uint) *string {
	if id == nil {
		return nil
	}
	name, ok := names[*id]
	if !ok {
		return nil
	}
	return &name
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
