package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PhotoURLPrefix 对外访问路径前缀，对应 UPLOAD_DIR
const PhotoURLPrefix = "/uploads"

// 允许的图片类型 -> 扩展名
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PhotoStorage 作品照片本地存储
type PhotoStorage struct {
	dir     string
	maxSize int64
}

func NewPhotoStorage(dir string, maxSize int64) *PhotoStorage {
	return &PhotoStorage{dir: dir, maxSize: maxSize}
}

func (p *PhotoStorage) Dir() string {
	return p.dir
}

func (p *PhotoStorage) MaxSize() int64 {
	return p.maxSize
}

// Save 校验大小和真实内容类型后写入磁盘，返回访问 URL
func (p *PhotoStorage) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: photo is empty", ErrValidation)
	}
	if int64(len(data)) > p.maxSize {
		return "", fmt.Errorf("%w: photo exceeds %d bytes", ErrValidation, p.maxSize)
	}

	ext := ""
	detected := mimetype.Detect(data)
	for mime, e := range allowedPhotoTypes {
		if detected.Is(mime) {
			ext = e
			break
		}
	}
	if ext == "" {
		return "", fmt.Errorf("%w: only jpeg, png, gif and webp images are allowed (got %s)", ErrValidation, detected.String())
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(p.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return PhotoURLPrefix + "/" + name, nil
}

// Remove 删除 URL 对应文件；非本地上传或文件已不存在时忽略
func (p *PhotoStorage) Remove(url string) error {
	if !strings.HasPrefix(url, PhotoURLPrefix+"/") {
		return nil
	}
	name := filepath.Base(url)
	err := os.Remove(filepath.Join(p.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
