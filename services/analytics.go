package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateRange bounds analytics by order creation time. Zero values mean unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time // exclusive
}

// Summary holds the dashboard headline figures.
type Summary struct {
	TotalCustomers  int             `json:"total_customers"`
	PendingWork     int             `json:"pending_work"`
	CancelledOrders int             `json:"cancelled_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	ReceivedRevenue decimal.Decimal `json:"received_revenue"`
	PendingRevenue  decimal.Decimal `json:"pending_revenue"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	LowStockItems   int             `json:"low_stock_items"`
}

// MonthlyRevenue is the order value booked in one calendar month.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StatusCount is the number of orders in one pipeline stage.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MaterialUsage is one material's share of the total quantity ordered.
type MaterialUsage struct {
	MaterialID uint            `json:"material_id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Percent    int64           `json:"percent"`
}

// StaffTasks is the number of orders a staff member is assigned to.
type StaffTasks struct {
	StaffID uint   `json:"staff_id"`
	Name    string `json:"name"`
	Tasks   int    `json:"tasks"`
}

// AnalyticsService computes dashboard aggregates. Sums run in Go over
// decimal values so totals stay exact on every store.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func (a *AnalyticsService) orders(ctx context.Context, r DateRange) ([]models.Order, error) {
	var orders []models.Order
	q := a.db.WithContext(ctx).Model(&models.Order{})
	if r.From != nil {
		q = q.Where("created_at >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("created_at < ?", *r.To)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Summary computes the headline cards. Payments count towards received
// revenue when their order falls in the range; expenses by expense date.
func (a *AnalyticsService) Summary(ctx context.Context, r DateRange) (*Summary, error) {
	orders, err := a.orders(ctx, r)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalRevenue:    decimal.Zero,
		ReceivedRevenue: decimal.Zero,
		TotalExpenses:   decimal.Zero,
	}
	clients := make(map[string]bool)
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		clients[strings.ToLower(strings.TrimSpace(o.ClientName))] = true
		switch o.Status {
		case models.StatusCancelled:
			s.CancelledOrders++
		case models.StatusCompleted:
		default:
			s.PendingWork++
		}
		s.TotalRevenue = s.TotalRevenue.Add(o.FinalPrice)
	}
	s.TotalCustomers = len(clients)

	if len(ids) > 0 {
		var payments []models.Payment
		if err := a.db.WithContext(ctx).Where("order_id IN ?", ids).Find(&payments).Error; err != nil {
			return nil, err
		}
		s.ReceivedRevenue = TotalPaid(payments)
	}
	s.PendingRevenue = s.TotalRevenue.Sub(s.ReceivedRevenue)

	var expenses []models.Expense
	q := a.db.WithContext(ctx).Model(&models.Expense{})
	if r.From != nil {
		q = q.Where("expense_date >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("expense_date < ?", *r.To)
	}
	if err := q.Find(&expenses).Error; err != nil {
		return nil, err
	}
	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
	}
	s.NetProfit = s.ReceivedRevenue.Sub(s.TotalExpenses)

	var materials []models.Material
	if err := a.db.WithContext(ctx).Find(&materials).Error; err != nil {
		return nil, err
	}
	for _, m := range materials {
		if m.LowStock() {
			s.LowStockItems++
		}
	}
	return s, nil
}

// MonthlyRevenue returns booked order value for each month of year, January first.
func (a *AnalyticsService) MonthlyRevenue(ctx context.Context, year int) ([]MonthlyRevenue, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	orders, err := a.orders(ctx, DateRange{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	totals := make([]decimal.Decimal, 12)
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, o := range orders {
		m := o.CreatedAt.UTC().Month()
		totals[m-1] = totals[m-1].Add(o.FinalPrice)
	}

	out := make([]MonthlyRevenue, 12)
	for i := range out {
		out[i] = MonthlyRevenue{
			Month:   time.Month(i + 1).String()[:3],
			Revenue: totals[i],
		}
	}
	return out, nil
}

// StatusCounts returns the order count per stage, in pipeline order.
func (a *AnalyticsService) StatusCounts(ctx context.Context, r DateRange) ([]StatusCount, error) {
	orders, err := a.orders(ctx, r)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(models.OrderStatuses))
	for _, o := range orders {
		counts[models.NormalizeOrderStatus(o.Status)]++
	}
	out := make([]StatusCount, 0, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		out = append(out, StatusCount{Status: status, Count: counts[status]})
	}
	return out, nil
}

// MaterialUsage returns each material's share of ordered quantity, largest
// first. Percentages are rounded to whole numbers.
func (a *AnalyticsService) MaterialUsage(ctx context.Context, r DateRange) ([]MaterialUsage, error) {
	orders, err := a.orders(ctx, r)
	if err != nil {
		return nil, err
	}

	usage := make(map[uint]decimal.Decimal)
	total := decimal.Zero
	for _, o := range orders {
		if o.MaterialID == nil || o.MaterialQty == nil || !o.MaterialQty.IsPositive() {
			continue
		}
		usage[*o.MaterialID] = usage[*o.MaterialID].Add(*o.MaterialQty)
		total = total.Add(*o.MaterialQty)
	}

	ids := make([]uint, 0, len(usage))
	for id := range usage {
		ids = append(ids, id)
	}
	names, err := namesByID(a.db.WithContext(ctx), &models.Material{}, ids)
	if err != nil {
		return nil, err
	}

	out := make([]MaterialUsage, 0, len(usage))
	hundred := decimal.NewFromInt(100)
	for id, qty := range usage {
		name, ok := names[id]
		if !ok {
			name = "Deleted material"
		}
		out = append(out, MaterialUsage{
			MaterialID: id,
			Name:       name,
			Quantity:   qty,
			Percent:    qty.Div(total).Mul(hundred).Round(0).IntPart(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].MaterialID < out[j].MaterialID
	})
	return out, nil
}

// StaffTasks returns assignment counts for every staff member, idle staff
// included, busiest first.
func (a *AnalyticsService) StaffTasks(ctx context.Context, r DateRange) ([]StaffTasks, error) {
	db := a.db.WithContext(ctx)

	var staff []models.Staff
	if err := db.Order("name").Find(&staff).Error; err != nil {
		return nil, err
	}

	q := db.Model(&models.OrderStaff{}).Joins("JOIN orders ON orders.id = order_staff.order_id")
	if r.From != nil {
		q = q.Where("orders.created_at >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("orders.created_at < ?", *r.To)
	}
	var links []models.OrderStaff
	if err := q.Select("order_staff.order_id", "order_staff.staff_id").Find(&links).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(staff))
	for _, l := range links {
		counts[l.StaffID]++
	}

	out := make([]StaffTasks, 0, len(staff))
	for _, st := range staff {
		out = append(out, StaffTasks{StaffID: st.ID, Name: st.Name, Tasks: counts[st.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tasks > out[j].Tasks
	})
	return out, nil
}
