package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Jar represents a named savings goal owned by a single user. CurrentAmount
// is derived state: it must always equal the sum of the jar's live deposits.
type Jar struct {
	ID            uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID        uuid.UUID       `json:"ownerId" gorm:"type:char(36);not null;index"`
	Name          string          `json:"name" gorm:"size:140;not null"`
	TargetAmount  decimal.Decimal `json:"targetAmount" gorm:"type:decimal(20,2);not null"`
	CurrentAmount decimal.Decimal `json:"currentAmount" gorm:"type:decimal(20,2);not null;default:0"`
	Description   string          `json:"description" gorm:"size:400"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Relations
	User     User      `json:"-" gorm:"foreignKey:UserID"`
	Deposits []Deposit `json:"-" gorm:"foreignKey:JarID"`
}

// BeforeCreate sets UUID before creating the record.
func (j *Jar) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Progress returns the percentage of the target reached, clamped to [0, 100].
// A zero target always reports 0.
func (j *Jar) Progress() float64 {
	if !j.TargetAmount.IsPositive() {
		return 0
	}
	pct, _ := j.CurrentAmount.Div(j.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// OwnedBy reports whether the jar belongs to the given user.
func (j *Jar) OwnedBy(userID uuid.UUID) bool {
	return j.UserID == userID
}

// MarshalJSON includes the derived progress percentage alongside the stored fields.
func (j Jar) MarshalJSON() ([]byte, error) {
	type alias Jar
	return json.Marshal(struct {
		alias
		Progress float64 `json:"progress"`
	}{alias(j), j.Progress()})
}
