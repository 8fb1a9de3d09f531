package service

import (
	"fmt"

	"household/models"

	"gorm.io/gorm"
)

// SyncTags 用 tagIDs 整体替换实体上的标签
// 不存在的标签 ID 返回 gorm.ErrRecordNotFound
func SyncTags(db *gorm.DB, taggableType string, taggableID uint, tagIDs []uint) error {
	ids := uniqueIDs(tagIDs)
	return db.Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			var count int64
			if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
				return err
			}
			if int(count) != len(ids) {
				return fmt.Errorf("标签不存在: %w", gorm.ErrRecordNotFound)
			}
		}

		if err := tx.Where("taggable_type = ? AND taggable_id = ?", taggableType, taggableID).
			Delete(&models.Taggable{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		links := make([]models.Taggable, 0, len(ids))
		for _, id := range ids {
			links = append(links, models.Taggable{TagID: id, TaggableID: taggableID, TaggableType: taggableType})
		}
		return tx.Create(&links).Error
	})
}

// LoadTags 批量读取实体标签，返回 taggable_id -> 标签列表
func LoadTags(db *gorm.DB, taggableType string, taggableIDs []uint) (map[uint][]models.Tag, error) {
	result := make(map[uint][]models.Tag)
	if len(taggableIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		models.Tag
		TaggableID uint
	}
	err := db.Table("tags").
		Select("tags.*, taggables.taggable_id").
		Joins("JOIN taggables ON taggables.tag_id = tags.id").
		Where("taggables.taggable_type = ? AND taggables.taggable_id IN ?", taggableType, taggableIDs).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.TaggableID] = append(result[r.TaggableID], r.Tag)
	}
	return result, nil
}

// DeleteTaggables 删除实体时清理标签关联
func DeleteTaggables(db *gorm.DB, taggableType string, taggableIDs ...uint) error {
	if len(taggableIDs) == 0 {
		return nil
	}
	return db.Where("taggable_type = ? AND taggable_id IN ?", taggableType, taggableIDs).
		Delete(&models.Taggable{}).Error
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
