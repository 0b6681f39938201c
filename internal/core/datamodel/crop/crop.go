package crop

import "time"

// Crop lives in the tenant's own database.
type Crop struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Variety   string    `json:"variety"`
	StockKg   float64   `gorm:"column:stock_kg" json:"stock_kg"`
	UserID    int64     `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Crop) TableName() string {
	return "crops"
}
