package models

import "time"

// OrderStatus values. The legacy system enforces no transition graph: status
// is freely settable by the caller.
const (
	OrderStatusOpen       = "aberta"
	OrderStatusInProgress = "em_andamento"
	OrderStatusCompleted  = "concluida"
	OrderStatusCancelled  = "cancelada"
)

// Order (ordem de serviço) references a company and a client and exclusively
// owns its items. Total is persisted redundantly and must equal the sum of the
// current items' subtotals after every write; the service layer maintains that
// inside a single transaction.
type Order struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Numero        string     `gorm:"size:50;uniqueIndex;not null" json:"numero"`
	EmpresaID     uint       `gorm:"index;not null" json:"empresa_id"`
	ClienteID     uint       `gorm:"index;not null" json:"cliente_id"`
	DataCriacao   time.Time  `gorm:"autoCreateTime" json:"data_criacao"`
	DataConclusao *time.Time `json:"data_conclusao,omitempty"`
	Status        string     `gorm:"size:20;not null;default:'aberta'" json:"status"`
	Descricao     string     `gorm:"type:text" json:"descricao"`
	Observacoes   string     `gorm:"type:text" json:"observacoes"`
	Total         float64    `gorm:"not null;default:0" json:"total"`

	Itens []OrderItem `gorm:"foreignKey:OrdemID;constraint:OnDelete:CASCADE" json:"itens,omitempty"`
}

func (Order) TableName() string { return "ordens_servico" }

// OrderItem is one priced line within an order. ProdutoID is nullable: a line
// may be freeform instead of derived from a product template. Subtotal is
// stored redundantly as Quantidade × ValorUnitario.
type OrderItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	OrdemID       uint    `gorm:"index;not null" json:"ordem_id"`
	ProdutoID     *uint   `gorm:"index" json:"produto_id,omitempty"`
	Descricao     string  `gorm:"size:500" json:"descricao"`
	Quantidade    float64 `gorm:"not null;default:1" json:"quantidade"`
	ValorUnitario float64 `gorm:"not null" json:"valor_unitario"`
	Subtotal      float64 `gorm:"not null" json:"subtotal"`
}

func (OrderItem) TableName() string { return "itens_ordem" }

// ComputeSubtotal returns Quantidade × ValorUnitario at full float precision.
// Rounding happens only at render time.
func (it *OrderItem) ComputeSubtotal() float64 {
	return it.Quantidade * it.ValorUnitario
}
