package repository

import (
	"go-printshop-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	// Create menerima *gorm.DB (tx) agar insert file dan insert job
	// berjalan dalam satu transaksi
	Create(tx *gorm.DB, file *model.File) error
	FindByID(id uint) (*model.File, error)
	FindByUser(userID uuid.UUID) ([]model.File, error)
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) FileRepository {
	return &fileRepo{db}
}

func (r *fileRepo) Create(tx *gorm.DB, file *model.File) error {
	return tx.Create(file).Error
}

func (r *fileRepo) FindByID(id uint) (*model.File, error) {
	var file model.File
	err := r.db.First(&file, "file_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepo) FindByUser(userID uuid.UUID) ([]model.File, error) {
	var files []model.File
	err := r.db.Where("user_id = ?", userID).Order("upload_date DESC").Find(&files).Error
	return files, err
}
