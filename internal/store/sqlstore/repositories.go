package sqlstore

import (
	"context"

	"github.com/Aidin1998/todolist/common/dbutil"
	"github.com/Aidin1998/todolist/common/errors"
	"github.com/Aidin1998/todolist/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type itemRepository struct {
	db *gorm.DB
}

func (r *itemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	var records []itemRecord
	if err := r.db.WithContext(ctx).Order("position").Order("id").Find(&records).Error; err != nil {
		return nil, wrap(err)
	}

	items := make([]models.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toModel())
	}
	return items, nil
}

func (r *itemRepository) Insert(ctx context.Context, item models.Item) error {
	return r.InsertMany(ctx, []models.Item{item})
}

func (r *itemRepository) InsertMany(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base, err := maxPosition(tx.Model(&itemRecord{}))
		if err != nil {
			return err
		}
		records := make([]itemRecord, 0, len(items))
		for i, item := range items {
			records = append(records, itemRecord{ID: item.ID, Name: item.Name, Position: base + int64(i) + 1})
		}
		return tx.Create(&records).Error
	}))
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return wrap(r.db.WithContext(ctx).Where("id = ?", id).Delete(&itemRecord{}).Error)
}

type listRepository struct {
	db *gorm.DB
}

func (r *listRepository) FindByName(ctx context.Context, name string) (*models.List, error) {
	db := r.db.WithContext(ctx)

	rec, err := dbutil.FindOne[listRecord](db.Where("name = ?", name))
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			return nil, errors.NotFound.Explain("list %q not found", name)
		}
		return nil, err
	}

	var itemRecords []listItemRecord
	if err := db.Where("list_id = ?", rec.ID).Order("position").Order("id").Find(&itemRecords).Error; err != nil {
		return nil, wrap(err)
	}

	list := &models.List{ID: rec.ID, Name: rec.Name, Items: make([]models.Item, 0, len(itemRecords))}
	for _, item := range itemRecords {
		list.Items = append(list.Items, item.toModel())
	}
	return list, nil
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&listRecord{ID: list.ID, Name: list.Name}).Error; err != nil {
			return err
		}
		if len(list.Items) == 0 {
			return nil
		}
		records := make([]listItemRecord, 0, len(list.Items))
		for i, item := range list.Items {
			records = append(records, listItemRecord{ListID: list.ID, ID: item.ID, Name: item.Name, Position: int64(i) + 1})
		}
		return tx.Create(&records).Error
	})
	if err = wrap(err); errors.Is(err, errors.Conflict) {
		return errors.Conflict.Explain("list %q already exists", list.Name).Wrap(err)
	}
	return err
}

func (r *listRepository) PushItem(ctx context.Context, name string, item models.Item) error {
	return wrap(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&listRecord{}).Where("name = ?", name).Limit(1).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return errors.NotFound.Explain("list %q not found", name)
		}
		listID := ids[0]

		base, err := maxPosition(tx.Model(&listItemRecord{}).Where("list_id = ?", listID))
		if err != nil {
			return err
		}
		return tx.Create(&listItemRecord{ListID: listID, ID: item.ID, Name: item.Name, Position: base + 1}).Error
	}))
}

// PullItem is a single DELETE scoped to the list by a subquery, so it is
// atomic without a transaction.
func (r *listRepository) PullItem(ctx context.Context, name string, itemID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	listIDs := db.Model(&listRecord{}).Select("id").Where("name = ?", name)
	return wrap(db.Where("list_id IN (?)", listIDs).Where("id = ?", itemID).Delete(&listItemRecord{}).Error)
}

func maxPosition(q *gorm.DB) (int64, error) {
	var max int64
	if err := q.Select("COALESCE(MAX(position), 0)").Row().Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}
