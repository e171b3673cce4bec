package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// MemoryPatientsRepository: 用于 DB 未就绪时的联测
type MemoryPatientsRepository struct {
	mu       sync.RWMutex
	patients map[string]domain.Patient // patientID -> Patient
}

func NewMemoryPatientsRepository() *MemoryPatientsRepository {
	return &MemoryPatientsRepository{
		patients: map[string]domain.Patient{},
	}
}

var _ PatientsRepository = (*MemoryPatientsRepository)(nil)

func (r *MemoryPatientsRepository) GetPatient(_ context.Context, patientID string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[patientID]
	if !ok {
		return nil, fmt.Errorf("patient not found: %w", sql.ErrNoRows)
	}
	return &p, nil
}

func (r *MemoryPatientsRepository) ListPatientsByOwner(_ context.Context, ownerID string) ([]domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Patient{}
	for _, p := range r.patients {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryPatientsRepository) CreatePatient(_ context.Context, patient *domain.Patient) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *patient
	if p.PatientID == "" {
		p.PatientID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.patients[p.PatientID] = p
	return p.PatientID, nil
}

func (r *MemoryPatientsRepository) UpdatePatient(_ context.Context, patientID string, patient *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.patients[patientID]
	if !ok {
		return fmt.Errorf("patient not found: %w", sql.ErrNoRows)
	}
	p := *patient
	p.PatientID = patientID
	p.OwnerID = old.OwnerID
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now()
	r.patients[patientID] = p
	return nil
}

func (r *MemoryPatientsRepository) DeletePatient(_ context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[patientID]; !ok {
		return fmt.Errorf("patient not found: %w", sql.ErrNoRows)
	}
	delete(r.patients, patientID)
	return nil
}
