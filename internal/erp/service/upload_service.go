package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// allowedImageExtensions 允许上传的图片格式
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// maxImageSize 图片大小上限（5MB）
const maxImageSize = 5 * 1024 * 1024

// UploadService 商品图片上传服务，对象存储使用MinIO
type UploadService struct {
	minioClient *minio.Client
	bucketName  string
}

func NewUploadService(minioClient *minio.Client, bucketName string) *UploadService {
	return &UploadService{
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// UploadResult 上传结果
type UploadResult struct {
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
}

func allowedExtensionList() string {
	exts := make([]string, 0, len(allowedImageExtensions))
	for ext := range allowedImageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// UploadImage 上传商品图片，返回对象路径
func (s *UploadService) UploadImage(ctx context.Context, reader io.Reader, fileName string, fileSize int64, contentType string) (*UploadResult, error) {
	if s.minioClient == nil {
		return nil, errors.New("文件存储服务未配置")
	}
	if fileName == "" {
		return nil, errors.New("文件名不能为空")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExtensions[ext] {
		return nil, fmt.Errorf("不支持的文件格式。支持的格式：%s", allowedExtensionList())
	}
	if fileSize > maxImageSize {
		return nil, errors.New("文件大小不能超过5MB")
	}

	objectName := fmt.Sprintf("products/%s/%s%s", time.Now().Format("2006/01/02"), uuid.New().String()[:8], ext)

	if _, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("文件上传失败: %w", err)
	}

	return &UploadResult{
		Message:  "文件上传成功",
		FilePath: "/api/v1/upload/image/" + objectName,
		Filename: filepath.Base(objectName),
	}, nil
}

// GetImage 读取商品图片，调用方负责Close
func (s *UploadService) GetImage(ctx context.Context, objectName string) (io.ReadCloser, string, error) {
	if s.minioClient == nil {
		return nil, "", errors.New("文件存储服务未配置")
	}
	stat, err := s.minioClient.StatObject(ctx, s.bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", fmt.Errorf("文件不存在: %w", ErrNotFound)
		}
		return nil, "", fmt.Errorf("读取文件失败: %w", err)
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("读取文件失败: %w", err)
	}
	return object, stat.ContentType, nil
}

// DeleteImage 删除商品图片
func (s *UploadService) DeleteImage(ctx context.Context, objectName string) error {
	if s.minioClient == nil {
		return errors.New("文件存储服务未配置")
	}
	if _, err := s.minioClient.StatObject(ctx, s.bucketName, objectName, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("文件不存在: %w", ErrNotFound)
		}
		return fmt.Errorf("读取文件失败: %w", err)
	}
	if err := s.minioClient.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("文件删除失败: %w", err)
	}
	return nil
}
