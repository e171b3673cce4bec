package main

import (
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/pweat/Opieka-Plus-sub000/pkg/config"
	"github.com/pweat/Opieka-Plus-sub000/pkg/database"
)

// opieka-data 建表脚本：go run ./scripts/create_schema
const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    user_id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_account      VARCHAR(100) NOT NULL UNIQUE,
    user_account_hash BYTEA NOT NULL UNIQUE,
    password_hash     BYTEA NOT NULL,
    nickname          VARCHAR(100),
    email             VARCHAR(100),
    phone             VARCHAR(50),
    photo_url         TEXT,
    role              VARCHAR(20) NOT NULL CHECK (role IN ('owner', 'caregiver')),
    status            VARCHAR(20) DEFAULT 'active',
    owner_id          UUID REFERENCES users(user_id) ON DELETE SET NULL,
    last_login_at     TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_users_owner ON users(owner_id) WHERE owner_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS patients (
    patient_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id   UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    name       VARCHAR(100) NOT NULL,
    birth_date DATE,
    notes      TEXT,
    photo_url  TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_patients_owner ON patients(owner_id);

CREATE TABLE IF NOT EXISTS shifts (
    shift_id     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id     UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    caregiver_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    patient_id   UUID NOT NULL REFERENCES patients(patient_id) ON DELETE CASCADE,
    patient_name VARCHAR(100) NOT NULL,
    start_time   TIMESTAMPTZ NOT NULL,
    end_time     TIMESTAMPTZ NOT NULL,
    status       VARCHAR(20) NOT NULL DEFAULT 'scheduled'
                 CHECK (status IN ('scheduled', 'in_progress', 'completed')),
    tasks        JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (end_time > start_time)
);

CREATE INDEX IF NOT EXISTS idx_shifts_owner_start ON shifts(owner_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_shifts_caregiver_start ON shifts(caregiver_id, start_time DESC);
CREATE INDEX IF NOT EXISTS idx_shifts_patient ON shifts(patient_id);

CREATE TABLE IF NOT EXISTS visit_reports (
    report_id    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    shift_id     UUID NOT NULL UNIQUE REFERENCES shifts(shift_id) ON DELETE CASCADE,
    caregiver_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    patient_id   UUID NOT NULL REFERENCES patients(patient_id) ON DELETE CASCADE,
    mood         SMALLINT NOT NULL CHECK (mood BETWEEN 1 AND 5),
    energy       SMALLINT NOT NULL CHECK (energy BETWEEN 1 AND 5),
    notes        TEXT,
    tasks_done   SMALLINT NOT NULL DEFAULT 0,
    tasks_total  SMALLINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_visit_reports_patient ON visit_reports(patient_id, created_at DESC);

CREATE TABLE IF NOT EXISTS invites (
    invite_id    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id     UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    caregiver_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    code         VARCHAR(12) NOT NULL,
    redeemed_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_invites_owner ON invites(owner_id, redeemed_at DESC);
`

func main() {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "opieka"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ opieka-data schema created successfully!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
