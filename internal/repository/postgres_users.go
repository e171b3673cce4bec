package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// PostgresUsersRepository 用户Repository实现
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository 创建用户Repository
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

// 确保实现了接口
var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	user_account,
	user_account_hash,
	password_hash,
	nickname,
	email,
	phone,
	photo_url,
	role,
	status,
	owner_id::text,
	last_login_at,
	created_at`

// GetUser 按ID获取用户
func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByAccountHash 按账号哈希获取用户（登录用）
func (r *PostgresUsersRepository) GetUserByAccountHash(ctx context.Context, accountHash []byte) (*domain.User, error) {
	if len(accountHash) == 0 {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE user_account_hash = $1 AND status = 'active'`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, accountHash))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user by account hash: %w", err)
	}
	return user, nil
}

// ListCaregiversByOwner 列出归属某主照护者的协助照护者
func (r *PostgresUsersRepository) ListCaregiversByOwner(ctx context.Context, ownerID string) ([]domain.User, error) {
	if ownerID == "" {
		return []domain.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE owner_id = $1 AND status = 'active' ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list caregivers: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// CreateUser 创建用户
func (r *PostgresUsersRepository) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	userID := user.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	status := user.Status
	if status == "" {
		status = "active"
	}

	query := `
		INSERT INTO users (user_id, user_account, user_account_hash, password_hash, nickname, email, phone, photo_url, role, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		userID,
		user.UserAccount,
		user.UserAccountHash,
		user.PasswordHash,
		user.Nickname,
		user.Email,
		user.Phone,
		user.PhotoURL,
		user.Role,
		status,
		user.OwnerID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return userID, nil
}

// UpdateProfile 更新昵称/邮箱/电话/头像
func (r *PostgresUsersRepository) UpdateProfile(ctx context.Context, userID string, user *domain.User) error {
	if userID == "" {
		return sql.ErrNoRows
	}

	query := `
		UPDATE users
		SET nickname = $2, email = $3, phone = $4, photo_url = $5
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, user.Nickname, user.Email, user.Phone, user.PhotoURL)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return nil
}

// SetOwner 绑定协助照护者到主照护者
func (r *PostgresUsersRepository) SetOwner(ctx context.Context, userID, ownerID string) error {
	if userID == "" || ownerID == "" {
		return sql.ErrNoRows
	}

	query := `UPDATE users SET owner_id = $2 WHERE user_id = $1 AND role = $3`
	res, err := r.db.ExecContext(ctx, query, userID, ownerID, domain.RoleCaregiver)
	if err != nil {
		return fmt.Errorf("failed to set owner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return nil
}

// TouchLastLogin 更新最近登录时间
func (r *PostgresUsersRepository) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = CURRENT_TIMESTAMP WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}
	return nil
}

// scanUser 扫描一行用户记录
func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.UserAccount,
		&user.UserAccountHash,
		&user.PasswordHash,
		&user.Nickname,
		&user.Email,
		&user.Phone,
		&user.PhotoURL,
		&user.Role,
		&user.Status,
		&user.OwnerID,
		&user.LastLoginAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
