package models

import (
	"time"
)

// Item is one gallery image as stored in a category collection file.
type Item struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ItemRecord is the database row backing an Item when the gorm store is used.
type ItemRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Category  string    `gorm:"size:64;index:idx_gallery_items_category_item,unique" json:"category"`
	ItemID    string    `gorm:"size:32;index:idx_gallery_items_category_item,unique" json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (ItemRecord) TableName() string {
	return "gallery_items"
}

// Item converts the row back into the collection representation.
func (r ItemRecord) Item() Item {
	return Item{ID: r.ItemID, URL: r.URL}
}
