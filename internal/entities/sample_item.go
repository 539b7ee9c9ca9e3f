package entities

import (
	"time"

	"gorm.io/gorm"
)

type SampleItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UUID        string         `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	Name        string         `gorm:"size:256;not null;index" json:"name"`
	Description *string        `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// SampleItemLengths is the optional metadata returned with a sample item.
type SampleItemLengths struct {
	NameLength        int `json:"name_length"`
	DescriptionLength int `json:"description_length"`
}

// Lengths computes the item's metadata in characters.
func (s *SampleItem) Lengths() SampleItemLengths {
	meta := SampleItemLengths{NameLength: len([]rune(s.Name))}
	if s.Description != nil {
		meta.DescriptionLength = len([]rune(*s.Description))
	}
	return meta
}
