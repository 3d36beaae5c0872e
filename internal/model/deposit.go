package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deposit is a single contribution attached to exactly one jar. Creating,
// amending or removing a deposit always adjusts the parent jar's balance in
// the same transaction.
type Deposit struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	JarID       uuid.UUID       `json:"jarId" gorm:"type:char(36);not null;index"`
	UserID      uuid.UUID       `json:"ownerId" gorm:"type:char(36);not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Description string          `json:"description" gorm:"size:300"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Relations
	Jar  Jar  `json:"-" gorm:"foreignKey:JarID"`
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether the deposit belongs to the given user.
func (d *Deposit) OwnedBy(userID uuid.UUID) bool {
	return d.UserID == userID
}
