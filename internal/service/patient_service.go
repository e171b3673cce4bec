package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"

	"go.uber.org/zap"
)

// PatientService 患者档案服务接口
type PatientService interface {
	// GetPatient 获取患者档案
	GetPatient(ctx context.Context, callerID, patientID string) (*domain.Patient, error)

	// ListPatients 列出调用者可见的患者（owner 看自己的，caregiver 看归属 owner 的）
	ListPatients(ctx context.Context, callerID string) ([]domain.Patient, error)

	// CreatePatient 创建患者档案（仅限 owner）
	CreatePatient(ctx context.Context, req PatientRequest) (*domain.Patient, error)

	// UpdatePatient 更新患者档案（仅限 owner）
	UpdatePatient(ctx context.Context, patientID string, req PatientRequest) error

	// DeletePatient 删除患者档案（仅限 owner）
	DeletePatient(ctx context.Context, callerID, patientID string) error
}

// patientService 实现
type patientService struct {
	patientsRepo repository.PatientsRepository
	usersRepo    repository.UsersRepository
	logger       *zap.Logger
}

// NewPatientService 创建患者档案服务
func NewPatientService(patientsRepo repository.PatientsRepository, usersRepo repository.UsersRepository, logger *zap.Logger) PatientService {
	return &patientService{
		patientsRepo: patientsRepo,
		usersRepo:    usersRepo,
		logger:       logger,
	}
}

// PatientRequest 创建/更新患者档案请求
type PatientRequest struct {
	CallerID  string
	Name      string
	BirthDate *time.Time
	Notes     string
	PhotoURL  string
}

// GetPatient 获取患者档案
func (s *patientService) GetPatient(ctx context.Context, callerID, patientID string) (*domain.Patient, error) {
	patient, err := s.patientsRepo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, callerID, patient.OwnerID); err != nil {
		return nil, err
	}
	return patient, nil
}

// ListPatients 列出调用者可见的患者
func (s *patientService) ListPatients(ctx context.Context, callerID string) ([]domain.Patient, error) {
	caller, err := s.usersRepo.GetUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ownerID := callerID
	if caller.Role == domain.RoleCaregiver {
		if !caller.OwnerID.Valid {
			// 尚未兑换邀请码的协助照护者看不到任何患者
			return []domain.Patient{}, nil
		}
		ownerID = caller.OwnerID.String
	}
	return s.patientsRepo.ListPatientsByOwner(ctx, ownerID)
}

// CreatePatient 创建患者档案
func (s *patientService) CreatePatient(ctx context.Context, req PatientRequest) (*domain.Patient, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("patient name is required")
	}

	caller, err := s.usersRepo.GetUser(ctx, req.CallerID)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleOwner {
		return nil, fmt.Errorf("only the profile owner can create patients")
	}

	patient := &domain.Patient{
		OwnerID: req.CallerID,
		Name:    req.Name,
	}
	applyPatientFields(patient, req)

	patientID, err := s.patientsRepo.CreatePatient(ctx, patient)
	if err != nil {
		return nil, err
	}
	patient.PatientID = patientID

	s.logger.Info("Patient created",
		zap.String("patient_id", patientID),
		zap.String("owner_id", req.CallerID),
	)
	return patient, nil
}

// UpdatePatient 更新患者档案
func (s *patientService) UpdatePatient(ctx context.Context, patientID string, req PatientRequest) error {
	if req.Name == "" {
		return fmt.Errorf("patient name is required")
	}

	existing, err := s.patientsRepo.GetPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if existing.OwnerID != req.CallerID {
		return fmt.Errorf("only the profile owner can edit patients")
	}

	patient := &domain.Patient{Name: req.Name}
	applyPatientFields(patient, req)
	return s.patientsRepo.UpdatePatient(ctx, patientID, patient)
}

// DeletePatient 删除患者档案
func (s *patientService) DeletePatient(ctx context.Context, callerID, patientID string) error {
	existing, err := s.patientsRepo.GetPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return fmt.Errorf("only the profile owner can delete patients")
	}
	if err := s.patientsRepo.DeletePatient(ctx, patientID); err != nil {
		return err
	}
	s.logger.Info("Patient deleted",
		zap.String("patient_id", patientID),
		zap.String("owner_id", callerID),
	)
	return nil
}

// authorize 调用者必须是 owner 本人或归属该 owner 的协助照护者
func (s *patientService) authorize(ctx context.Context, callerID, ownerID string) error {
	return authorizeOwnerScope(ctx, s.usersRepo, callerID, ownerID)
}

func applyPatientFields(patient *domain.Patient, req PatientRequest) {
	if req.BirthDate != nil {
		patient.BirthDate = sql.NullTime{Time: *req.BirthDate, Valid: true}
	}
	if req.Notes != "" {
		patient.Notes = sql.NullString{String: req.Notes, Valid: true}
	}
	if req.PhotoURL != "" {
		patient.PhotoURL = sql.NullString{String: req.PhotoURL, Valid: true}
	}
}
