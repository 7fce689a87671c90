package models

import "time"

// Company (empresa) issues service orders. Logo holds the stored filename in
// the logo directory; the API materializes it to callers as a data URI in
// LogoData, which is never persisted.
type Company struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Nome            string    `gorm:"size:255;not null;index" json:"nome"`
	CNPJ            string    `gorm:"size:20" json:"cnpj"`
	Endereco        string    `gorm:"size:500" json:"endereco"`
	Telefone        string    `gorm:"size:30" json:"telefone"`
	TelefoneCelular string    `gorm:"size:30" json:"telefone_celular"`
	TelefoneFixo    string    `gorm:"size:30" json:"telefone_fixo"`
	Email           string    `gorm:"size:255" json:"email"`
	Logo            string    `gorm:"size:100" json:"logo"`
	CreatedAt       time.Time `json:"created_at"`

	LogoData string `gorm:"-" json:"logoData,omitempty"`
}

func (Company) TableName() string { return "empresas" }
