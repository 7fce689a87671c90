package models

import "time"

// Client (cliente) is referenced, never owned, by service orders.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"size:255;not null;index" json:"nome"`
	CpfCnpj   string    `gorm:"size:20" json:"cpf_cnpj"`
	Endereco  string    `gorm:"size:500" json:"endereco"`
	Telefone  string    `gorm:"size:30" json:"telefone"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Client) TableName() string { return "clientes" }
