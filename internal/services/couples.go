package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"sufganiot/internal/models"
	"sufganiot/internal/utils"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const MaxCoupleNameLength = 100

// ImportResult XLSX 导入结果
type ImportResult struct {
	Created []models.Couple `json:"created"`
	Skipped []string        `json:"skipped"`
}

// CoupleService 情侣（投票者）管理
type CoupleService struct {
	db       *gorm.DB
	photos   *PhotoStorage
	rankings *RankingService
	activity *ActivityService
}

func NewCoupleService(db *gorm.DB, photos *PhotoStorage, rankings *RankingService, activity *ActivityService) *CoupleService {
	return &CoupleService{db: db, photos: photos, rankings: rankings, activity: activity}
}

func normalizeCoupleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: couple name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxCoupleNameLength {
		return "", fmt.Errorf("%w: couple name must be at most %d characters", ErrValidation, MaxCoupleNameLength)
	}
	return name, nil
}

// List 全部情侣（附带其作品），按名称排序
func (s *CoupleService) List(ctx context.Context) ([]models.Couple, error) {
	couples := []models.Couple{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&couples).Error; err != nil {
		return nil, err
	}

	var entries []models.Sufgania
	if err := s.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}
	byOwner := make(map[string]*models.Sufgania, len(entries))
	for i := range entries {
		byOwner[entries[i].CoupleID] = &entries[i]
	}
	for i := range couples {
		couples[i].Sufgania = byOwner[couples[i].ID]
	}
	return couples, nil
}

func (s *CoupleService) Get(ctx context.Context, id string) (*models.Couple, error) {
	var couple models.Couple
	if err := s.db.WithContext(ctx).First(&couple, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "couple")
	}
	return &couple, nil
}

// FindByLoginCode 登录码大小写不敏感
func (s *CoupleService) FindByLoginCode(ctx context.Context, code string) (*models.Couple, error) {
	var couple models.Couple
	err := s.db.WithContext(ctx).First(&couple, "login_code = ?", utils.NormalizeCode(code)).Error
	if err != nil {
		return nil, notFound(err, "couple")
	}
	return &couple, nil
}

func (s *CoupleService) nameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Couple{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *CoupleService) uniqueCode(ctx context.Context) (string, error) {
	return utils.GenerateUniqueCode(func(code string) (bool, error) {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Couple{}).Where("login_code = ?", code).Count(&count).Error
		return count > 0, err
	})
}

// Create 新建情侣并生成唯一登录码
func (s *CoupleService) Create(ctx context.Context, name string) (*models.Couple, error) {
	name, err := normalizeCoupleName(name)
	if err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("couple name %q already exists: %w", name, ErrConflict)
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	couple := models.Couple{Name: name, LoginCode: code}
	if err := s.db.WithContext(ctx).Create(&couple).Error; err != nil {
		return nil, conflict(err, "couple")
	}

	s.rankings.Invalidate()
	s.activity.Log(models.ActivityCoupleCreated, ActorAdmin, "Created couple "+name)
	return &couple, nil
}

// Update 修改名称
func (s *CoupleService) Update(ctx context.Context, id, name string) (*models.Couple, error) {
	name, err := normalizeCoupleName(name)
	if err != nil {
		return nil, err
	}
	couple, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("couple name %q already exists: %w", name, ErrConflict)
	}

	if err := s.db.WithContext(ctx).Model(couple).Update("name", name).Error; err != nil {
		return nil, conflict(err, "couple")
	}
	couple.Name = name

	s.rankings.Invalidate()
	s.activity.Log(models.ActivityCoupleUpdated, ActorAdmin, "Renamed couple to "+name)
	return couple, nil
}

// RegenerateCode 重新生成登录码，旧码立即失效
func (s *CoupleService) RegenerateCode(ctx context.Context, id string) (*models.Couple, error) {
	couple, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(couple).Update("login_code", code).Error; err != nil {
		return nil, conflict(err, "login code")
	}
	couple.LoginCode = code

	s.activity.Log(models.ActivityCodeRegenerated, ActorAdmin, "Regenerated login code for "+couple.Name)
	return couple, nil
}

// Delete 级联删除：该情侣投出的票和评论、其作品及作品收到的票和评论，同一事务。
// 照片文件在提交后清理，失败只记日志。
func (s *CoupleService) Delete(ctx context.Context, id string) error {
	couple, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var photoURL string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.Sufgania
		err := tx.Where("couple_id = ?", id).First(&entry).Error
		hasEntry := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Where("couple_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("couple_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if hasEntry {
			if err := deleteEntryTx(tx, entry.ID); err != nil {
				return err
			}
			photoURL = entry.PhotoURL
		}
		return tx.Delete(&models.Couple{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	if photoURL != "" {
		if err := s.photos.Remove(photoURL); err != nil {
			log.Printf("Failed to remove photo %s: %v", photoURL, err)
		}
	}

	s.rankings.Invalidate()
	s.activity.Log(models.ActivityCoupleDeleted, ActorAdmin, "Deleted couple "+couple.Name)
	return nil
}

// ImportXLSX 读取第一个工作表，首行为表头，A 列为情侣名称；重复或无效名称跳过
func (s *CoupleService) ImportXLSX(ctx context.Context, r io.Reader) (*ImportResult, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse XLSX file: %v", ErrValidation, err)
	}
	defer xlsx.Close()

	sheets := xlsx.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrValidation)
	}
	rows, err := xlsx.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Created: []models.Couple{}, Skipped: []string{}}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		couple, err := s.Create(ctx, name)
		switch {
		case err == nil:
			result.Created = append(result.Created, *couple)
		case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
			result.Skipped = append(result.Skipped, name)
		default:
			return nil, err
		}
	}
	return result, nil
}
