package services

import (
	"fmt"

	"github.com/kendall-kelly/cnc-shop-api/models"
)

// Pipeline policy names accepted by PIPELINE_POLICY.
const (
	PolicyOpen    = "open"
	PolicyForward = "forward"
)

// TransitionTable maps a current status to the set of statuses it may move to.
type TransitionTable map[string]map[string]bool

// AllowAllTransitions lets any stage move to any other stage, cancelled included.
func AllowAllTransitions() TransitionTable {
	table := make(TransitionTable, len(models.OrderStatuses))
	for _, from := range models.OrderStatuses {
		table[from] = make(map[string]bool, len(models.OrderStatuses))
		for _, to := range models.OrderStatuses {
			table[from][to] = true
		}
	}
	return table
}

// ForwardOnlyTransitions lets an order advance to any later stage or be
// cancelled from any open stage. Completed and cancelled are terminal.
func ForwardOnlyTransitions() TransitionTable {
	table := make(TransitionTable, len(models.OrderStatuses))
	for i, from := range models.OrderStatuses {
		table[from] = map[string]bool{from: true}
		if from == models.StatusCompleted || from == models.StatusCancelled {
			continue
		}
		for _, to := range models.OrderStatuses[i+1:] {
			table[from][to] = true
		}
	}
	return table
}

// TransitionsForPolicy resolves a configured policy name to its table.
func TransitionsForPolicy(policy string) (TransitionTable, error) {
	switch policy {
	case "", PolicyOpen:
		return AllowAllTransitions(), nil
	case PolicyForward:
		return ForwardOnlyTransitions(), nil
	default:
		return nil, fmt.Errorf("unknown pipeline policy %q", policy)
	}
}

// Pipeline validates and applies status changes.
type Pipeline struct {
	transitions TransitionTable
}

// NewPipeline creates a pipeline backed by the given table. A nil table allows everything.
func NewPipeline(transitions TransitionTable) *Pipeline {
	if transitions == nil {
		transitions = AllowAllTransitions()
	}
	return &Pipeline{transitions: transitions}
}

// CanTransition reports whether from -> to is permitted.
func (p *Pipeline) CanTransition(from, to string) bool {
	return p.transitions[models.NormalizeOrderStatus(from)][to]
}

// SetStatus moves order to newStatus. Nothing else on the order changes.
func (p *Pipeline) SetStatus(order *models.Order, newStatus string) error {
	if !models.IsValidOrderStatus(newStatus) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}
	if !p.CanTransition(order.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status, newStatus)
	}
	order.Status = newStatus
	return nil
}

// Column is one Kanban column of the order board.
type Column struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Orders []OrderView `json:"orders"`
}

// Board buckets orders into the six status columns in pipeline order. Every
// order lands in exactly one column.
func Board(orders []OrderView) []Column {
	index := make(map[string]int, len(models.OrderStatuses))
	columns := make([]Column, len(models.OrderStatuses))
	for i, status := range models.OrderStatuses {
		index[status] = i
		columns[i] = Column{Status: status, Orders: []OrderView{}}
	}
	for _, o := range orders {
		i := index[models.NormalizeOrderStatus(o.Status)]
		columns[i].Orders = append(columns[i].Orders, o)
		columns[i].Count++
	}
	return columns
}
