package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JarActivity is a human-readable audit entry for a jar ("created jar",
// "added 250.00", ...). Activities are removed together with their jar.
type JarActivity struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	JarID     uuid.UUID `json:"jarId" gorm:"type:char(36);not null;index"`
	UserID    uuid.UUID `json:"ownerId" gorm:"type:char(36);not null;index"`
	Action    string    `json:"action" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Jar  Jar  `json:"-" gorm:"foreignKey:JarID"`
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (a *JarActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
