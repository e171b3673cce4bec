package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// PostgresPatientsRepository 患者Repository实现
type PostgresPatientsRepository struct {
	db *sql.DB
}

// NewPostgresPatientsRepository 创建患者Repository
func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

// 确保实现了接口
var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

const patientColumns = `
	patient_id::text,
	owner_id::text,
	name,
	birth_date,
	notes,
	photo_url,
	created_at,
	updated_at`

// GetPatient 获取患者档案
func (r *PostgresPatientsRepository) GetPatient(ctx context.Context, patientID string) (*domain.Patient, error) {
	if patientID == "" {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE patient_id = $1`
	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// ListPatientsByOwner 列出某主照护者的全部患者
func (r *PostgresPatientsRepository) ListPatientsByOwner(ctx context.Context, ownerID string) ([]domain.Patient, error) {
	if ownerID == "" {
		return []domain.Patient{}, nil
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := []domain.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}
	return patients, nil
}

// CreatePatient 创建患者档案
func (r *PostgresPatientsRepository) CreatePatient(ctx context.Context, patient *domain.Patient) (string, error) {
	patientID := patient.PatientID
	if patientID == "" {
		patientID = uuid.NewString()
	}

	query := `
		INSERT INTO patients (patient_id, owner_id, name, birth_date, notes, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		patientID,
		patient.OwnerID,
		patient.Name,
		patient.BirthDate,
		patient.Notes,
		patient.PhotoURL,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create patient: %w", err)
	}
	return patientID, nil
}

// UpdatePatient 更新患者档案
func (r *PostgresPatientsRepository) UpdatePatient(ctx context.Context, patientID string, patient *domain.Patient) error {
	if patientID == "" {
		return sql.ErrNoRows
	}

	query := `
		UPDATE patients
		SET name = $2,
		    birth_date = $3,
		    notes = $4,
		    photo_url = $5,
		    updated_at = CURRENT_TIMESTAMP
		WHERE patient_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, patientID, patient.Name, patient.BirthDate, patient.Notes, patient.PhotoURL)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("patient not found: %w", sql.ErrNoRows)
	}
	return nil
}

// DeletePatient 删除患者档案
func (r *PostgresPatientsRepository) DeletePatient(ctx context.Context, patientID string) error {
	if patientID == "" {
		return sql.ErrNoRows
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = $1`, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("patient not found: %w", sql.ErrNoRows)
	}
	return nil
}

// scanPatient 扫描一行患者记录
func scanPatient(row rowScanner) (*domain.Patient, error) {
	var patient domain.Patient
	err := row.Scan(
		&patient.PatientID,
		&patient.OwnerID,
		&patient.Name,
		&patient.BirthDate,
		&patient.Notes,
		&patient.PhotoURL,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}
