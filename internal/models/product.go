package models

import "time"

// Product kinds. Tipo is free text in the legacy schema; these are the values
// the UI writes.
const (
	ProductKindGoods   = "produto"
	ProductKindService = "servico"
)

// Product is a template for order line items: name and price are copied onto
// the item at order-creation time, not live-linked.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"size:255;not null;index" json:"nome"`
	Descricao string    `gorm:"size:500" json:"descricao"`
	Preco     float64   `gorm:"not null" json:"preco"`
	Tipo      string    `gorm:"size:20" json:"tipo"`
	CreatedAt time.Time `json:"created_at"`
}

func (Product) TableName() string { return "produtos" }
