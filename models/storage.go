package models

import (
	"time"

	"gorm.io/gorm"
)

// Storage 存放位置（柜子、抽屉等）
type Storage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Location    string    `json:"location" gorm:"size:255"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Stuffs      []Stuff   `json:"stuffs,omitempty" gorm:"foreignKey:StorageID;constraint:OnDelete:SET NULL"`
}

func (Storage) TableName() string {
	return "storages"
}

// Stuff 非消耗类物品，只记录放在哪里
type Stuff struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:255;not null;index"`
	StorageID *uint          `json:"storage_id" gorm:"index"`
	Storage   *Storage       `json:"storage,omitempty" gorm:"foreignKey:StorageID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Tags      []Tag          `json:"tags,omitempty" gorm:"-"`
}

func (Stuff) TableName() string {
	return "stuffs"
}
