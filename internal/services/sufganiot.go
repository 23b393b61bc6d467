package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"sufganiot/internal/models"

	"gorm.io/gorm"
)

const (
	MaxSufganiaNameLength        = 100
	MaxSufganiaDescriptionLength = 500
)

// SufganiaInput 创建/更新作品
type SufganiaInput struct {
	CoupleID    string `json:"coupleId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GalleryItem 公开相册
type GalleryItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PhotoURL   string `json:"photoUrl"`
	CoupleName string `json:"coupleName"`
}

// SufganiaService 作品管理
type SufganiaService struct {
	db       *gorm.DB
	photos   *PhotoStorage
	rankings *RankingService
	activity *ActivityService
}

func NewSufganiaService(db *gorm.DB, photos *PhotoStorage, rankings *RankingService, activity *ActivityService) *SufganiaService {
	return &SufganiaService{db: db, photos: photos, rankings: rankings, activity: activity}
}

func (in *SufganiaInput) normalize() error {
	in.CoupleID = strings.TrimSpace(in.CoupleID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.CoupleID == "" {
		return fmt.Errorf("%w: coupleId is required", ErrValidation)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(in.Name) > MaxSufganiaNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, MaxSufganiaNameLength)
	}
	if utf8.RuneCountInString(in.Description) > MaxSufganiaDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxSufganiaDescriptionLength)
	}
	return nil
}

// List 全部作品（含所属情侣），按名称排序
func (s *SufganiaService) List(ctx context.Context) ([]models.Sufgania, error) {
	entries := []models.Sufgania{}
	err := s.db.WithContext(ctx).
		Preload("Couple").
		Order("name ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (s *SufganiaService) Get(ctx context.Context, id string) (*models.Sufgania, error) {
	var entry models.Sufgania
	if err := s.db.WithContext(ctx).Preload("Couple").First(&entry, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "sufgania")
	}
	return &entry, nil
}

// assertOwnerAvailable 情侣须存在且尚未拥有其他作品
func (s *SufganiaService) assertOwnerAvailable(ctx context.Context, coupleID, exceptID string) error {
	var couple models.Couple
	if err := s.db.WithContext(ctx).Select("id").First(&couple, "id = ?", coupleID).Error; err != nil {
		return notFound(err, "couple")
	}

	var count int64
	q := s.db.WithContext(ctx).Model(&models.Sufgania{}).Where("couple_id = ?", coupleID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("couple already has a sufgania: %w", ErrConflict)
	}
	return nil
}

func (s *SufganiaService) Create(ctx context.Context, in SufganiaInput) (*models.Sufgania, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := s.assertOwnerAvailable(ctx, in.CoupleID, ""); err != nil {
		return nil, err
	}

	entry := models.Sufgania{
		Name:        in.Name,
		Description: in.Description,
		CoupleID:    in.CoupleID,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, conflict(err, "sufgania")
	}

	s.rankings.Invalidate()
	s.activity.Log(models.ActivitySufganiaCreated, ActorAdmin, "Created sufgania "+entry.Name)
	return s.Get(ctx, entry.ID)
}

func (s *SufganiaService) Update(ctx context.Context, id string, in SufganiaInput) (*models.Sufgania, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CoupleID == "" {
		in.CoupleID = entry.CoupleID
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.CoupleID != entry.CoupleID {
		if err := s.assertOwnerAvailable(ctx, in.CoupleID, id); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Sufgania{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"couple_id":   in.CoupleID,
		}).Error
		if err != nil {
			return conflict(err, "sufgania")
		}
		if in.CoupleID == entry.CoupleID {
			return nil
		}
		// 新主人不能对自己的作品持有投票或评论
		return dropOwnVotesTx(tx, in.CoupleID, id)
	})
	if err != nil {
		return nil, err
	}

	s.rankings.Invalidate()
	s.activity.Log(models.ActivitySufganiaUpdated, ActorAdmin, "Updated sufgania "+in.Name)
	return s.Get(ctx, id)
}

// dropOwnVotesTx 删除 coupleID 对 entryID 的全部投票和评论
func dropOwnVotesTx(tx *gorm.DB, coupleID, entryID string) error {
	if err := tx.Where("couple_id = ? AND sufgania_id = ?", coupleID, entryID).Delete(&models.Vote{}).Error; err != nil {
		return err
	}
	return tx.Where("couple_id = ? AND sufgania_id = ?", coupleID, entryID).Delete(&models.Comment{}).Error
}

// deleteEntryTx 删除作品及其收到的票和评论（在调用方事务内）
func deleteEntryTx(tx *gorm.DB, entryID string) error {
	if err := tx.Where("sufgania_id = ?", entryID).Delete(&models.Vote{}).Error; err != nil {
		return err
	}
	if err := tx.Where("sufgania_id = ?", entryID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Sufgania{}, "id = ?", entryID).Error
}

// Delete 级联删除票和评论；照片清理失败不影响删除
func (s *SufganiaService) Delete(ctx context.Context, id string) error {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteEntryTx(tx, id)
	})
	if err != nil {
		return err
	}

	if err := s.photos.Remove(entry.PhotoURL); err != nil {
		log.Printf("Failed to remove photo %s: %v", entry.PhotoURL, err)
	}

	s.rankings.Invalidate()
	s.activity.Log(models.ActivitySufganiaDeleted, ActorAdmin, "Deleted sufgania "+entry.Name)
	return nil
}

// AttachPhoto 上传并替换作品照片，旧文件随后删除
func (s *SufganiaService) AttachPhoto(ctx context.Context, id string, r io.Reader) (*models.Sufgania, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.photos.Save(r)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Sufgania{}).Where("id = ?", id).Update("photo_url", url).Error; err != nil {
		if rmErr := s.photos.Remove(url); rmErr != nil {
			log.Printf("Failed to remove orphaned photo %s: %v", url, rmErr)
		}
		return nil, err
	}

	if entry.PhotoURL != "" {
		if err := s.photos.Remove(entry.PhotoURL); err != nil {
			log.Printf("Failed to remove old photo %s: %v", entry.PhotoURL, err)
		}
	}
	entry.PhotoURL = url

	s.rankings.Invalidate()
	s.activity.Log(models.ActivityPhotoUploaded, ActorAdmin, "Uploaded photo for "+entry.Name)
	return entry, nil
}

// Gallery 公开相册，按名称排序
func (s *SufganiaService) Gallery(ctx context.Context) ([]GalleryItem, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]GalleryItem, 0, len(entries))
	for _, e := range entries {
		item := GalleryItem{ID: e.ID, Name: e.Name, PhotoURL: e.PhotoURL}
		if e.Couple != nil {
			item.CoupleName = e.Couple.Name
		}
		items = append(items, item)
	}
	return items, nil
}
