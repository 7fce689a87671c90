package services

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"manageros/internal/logostore"
	"manageros/internal/models"
)

// ErrNotFound is returned when an order id does not resolve to a full
// aggregate. An order whose company or client row was deleted is treated the
// same as a missing order: the legacy reads used inner joins, so such orders
// were unreachable rather than half-populated.
var ErrNotFound = errors.New("ordem não encontrada")

// OrderService is the order aggregate builder. Every mutation runs inside a
// single transaction so the persisted total always equals the sum of the
// current items' subtotals, and a failed item write never leaves partial rows.
type OrderService struct {
	DB    *gorm.DB
	Logos *logostore.Store
}

func NewOrderService(db *gorm.DB, logos *logostore.Store) *OrderService {
	return &OrderService{DB: db, Logos: logos}
}

// ItemInput is one line of an order write. Subtotal is always derived
// server-side, never trusted from the caller.
type ItemInput struct {
	ProdutoID     *uint   `json:"produto_id,omitempty"`
	Descricao     string  `json:"descricao"`
	Quantidade    float64 `json:"quantidade"`
	ValorUnitario float64 `json:"valor_unitario"`
}

// OrderInput carries the writable order fields plus the complete item list.
// Updates always replace the full item set; partial item patches are not
// supported.
type OrderInput struct {
	Numero        string      `json:"numero"`
	EmpresaID     uint        `json:"empresa_id"`
	ClienteID     uint        `json:"cliente_id"`
	Status        string      `json:"status"`
	DataConclusao *time.Time  `json:"data_conclusao,omitempty"`
	Descricao     string      `json:"descricao"`
	Observacoes   string      `json:"observacoes"`
	Itens         []ItemInput `json:"itens"`
}

// OrderAggregate is an order joined with its company, client, and ordered
// items, plus the raw logo bytes when the company has one. This is the input
// to both document renderers.
type OrderAggregate struct {
	Order   models.Order
	Company models.Company
	Client  models.Client
	Items   []models.OrderItem
	Logo    []byte
}

// Total sums the items' subtotals at full precision.
func (a *OrderAggregate) Total() float64 {
	var total float64
	for _, it := range a.Items {
		total += it.Subtotal
	}
	return total
}

// OrderRow is one row of the order listing, joined with company and client
// names.
type OrderRow struct {
	ID            uint       `json:"id"`
	Numero        string     `json:"numero"`
	EmpresaID     uint       `json:"empresa_id"`
	ClienteID     uint       `json:"cliente_id"`
	DataCriacao   time.Time  `json:"data_criacao"`
	DataConclusao *time.Time `json:"data_conclusao,omitempty"`
	Status        string     `json:"status"`
	Descricao     string     `json:"descricao"`
	Observacoes   string     `json:"observacoes"`
	Total         float64    `json:"total"`
	EmpresaNome   string     `json:"empresa_nome"`
	ClienteNome   string     `json:"cliente_nome"`
}

// GenerateNumber produces an order number in the UI's conventional shape:
// OS-<date>-<random 4 digits>. Uniqueness is ultimately enforced by the
// column's unique index, not by this helper.
func GenerateNumber(now time.Time) string {
	return fmt.Sprintf("OS-%s-%04d", now.Format("20060102"), rand.IntN(10000))
}

// Create inserts the order and its items, derives each subtotal and the order
// total, and persists everything in one transaction.
func (s *OrderService) Create(in OrderInput) (uint, error) {
	order := models.Order{
		Numero:        in.Numero,
		EmpresaID:     in.EmpresaID,
		ClienteID:     in.ClienteID,
		Status:        in.Status,
		DataConclusao: in.DataConclusao,
		Descricao:     in.Descricao,
		Observacoes:   in.Observacoes,
	}
	if order.Numero == "" {
		order.Numero = GenerateNumber(time.Now())
	}
	if order.Status == "" {
		order.Status = models.OrderStatusOpen
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		total, err := insertItems(tx, order.ID, in.Itens)
		if err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("total", total).Error
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

// Update rewrites the order fields, replaces the complete item set
// (delete-all-then-reinsert), and recomputes the total, all in one
// transaction.
func (s *OrderService) Update(id uint, in OrderInput) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		updates := map[string]any{
			"numero":         in.Numero,
			"empresa_id":     in.EmpresaID,
			"cliente_id":     in.ClienteID,
			"status":         in.Status,
			"data_conclusao": in.DataConclusao,
			"descricao":      in.Descricao,
			"observacoes":    in.Observacoes,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("ordem_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		total, err := insertItems(tx, id, in.Itens)
		if err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Update("total", total).Error
	})
}

func insertItems(tx *gorm.DB, orderID uint, items []ItemInput) (float64, error) {
	var total float64
	for _, in := range items {
		item := models.OrderItem{
			OrdemID:       orderID,
			ProdutoID:     in.ProdutoID,
			Descricao:     in.Descricao,
			Quantidade:    in.Quantidade,
			ValorUnitario: in.ValorUnitario,
		}
		item.Subtotal = item.ComputeSubtotal()
		total += item.Subtotal
		if err := tx.Create(&item).Error; err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Get assembles the full aggregate. Items come back in insertion order, which
// the replace-all update policy makes identical to primary-key order.
func (s *OrderService) Get(id uint) (*OrderAggregate, error) {
	agg := &OrderAggregate{}
	if err := s.DB.First(&agg.Order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.First(&agg.Company, agg.Order.EmpresaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.First(&agg.Client, agg.Order.ClienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.DB.Where("ordem_id = ?", id).Order("id asc").Find(&agg.Items).Error; err != nil {
		return nil, err
	}
	if s.Logos != nil && agg.Company.Logo != "" {
		// Missing logo file degrades to a logo-less document, not an error.
		if b, err := s.Logos.Get(agg.Company.Logo); err == nil {
			agg.Logo = b
		}
	}
	return agg, nil
}

// List returns all orders joined with company and client names, newest first.
func (s *OrderService) List() ([]OrderRow, error) {
	rows := []OrderRow{}
	err := s.DB.Table("ordens_servico AS os").
		Select("os.id, os.numero, os.empresa_id, os.cliente_id, os.data_criacao, os.data_conclusao, os.status, os.descricao, os.observacoes, os.total, e.nome AS empresa_nome, c.nome AS cliente_nome").
		Joins("JOIN empresas e ON os.empresa_id = e.id").
		Joins("JOIN clientes c ON os.cliente_id = c.id").
		Order("os.data_criacao DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the order and its items in one transaction. Items go first;
// the order row is the commit point.
func (s *OrderService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("ordem_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
}
