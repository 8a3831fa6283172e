package sqlstore

import (
	"time"

	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
)

// itemRecord is a row of the flat Items collection
type itemRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"not null"`
	Position  int64     `gorm:"not null;index"`
	CreatedAt time.Time
}

func (itemRecord) TableName() string { return "items" }

type listRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time
}

func (listRecord) TableName() string { return "lists" }

// listItemRecord is an item embedded in a list. The same item id may appear
// in several lists, so the key is (list_id, id).
type listItemRecord struct {
	ListID   uuid.UUID `gorm:"primaryKey;type:varchar(36)"`
	ID       uuid.UUID `gorm:"primaryKey;type:varchar(36)"`
	Name     string    `gorm:"not null"`
	Position int64     `gorm:"not null;index"`
}

func (listItemRecord) TableName() string { return "list_items" }

func (r itemRecord) toModel() models.Item {
	return models.Item{ID: r.ID, Name: r.Name}
}

func (r listItemRecord) toModel() models.Item {
	return models.Item{ID: r.ID, Name: r.Name}
}
