package repository

import (
	"context"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// PatientsRepository 患者Repository接口
type PatientsRepository interface {
	// GetPatient 获取患者档案
	GetPatient(ctx context.Context, patientID string) (*domain.Patient, error)

	// ListPatientsByOwner 列出某主照护者的全部患者
	ListPatientsByOwner(ctx context.Context, ownerID string) ([]domain.Patient, error)

	// CreatePatient 创建患者档案，返回生成的ID
	CreatePatient(ctx context.Context, patient *domain.Patient) (string, error)

	// UpdatePatient 更新患者档案
	UpdatePatient(ctx context.Context, patientID string, patient *domain.Patient) error

	// DeletePatient 删除患者档案
	DeletePatient(ctx context.Context, patientID string) error
}
