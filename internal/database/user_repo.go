package database

import (
	"database/sql"
	"errors"
	"time"

	"challengehub-backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

const userColumns = `id, pseudo, email, password_hash, first_name, last_name, role, auth_type, active,
       created_at, updated_at, last_login`

// Create creates a new user
func (r *UserRepo) Create(user *models.User) error {
	result, err := DB.Exec(`
		INSERT INTO users (pseudo, email, password_hash, first_name, last_name, role, auth_type, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.Pseudo, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Role, user.AuthType, user.Active)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var passwordHash sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Pseudo, &user.Email, &passwordHash,
		&user.FirstName, &user.LastName, &user.Role, &user.AuthType, &user.Active,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	return r.scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	return r.scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// GetByPseudo retrieves a user by pseudo
func (r *UserRepo) GetByPseudo(pseudo string) (*models.User, error) {
	return r.scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE pseudo = ?`, pseudo))
}

// GetActiveByEmail retrieves an active user by email. Inactive accounts and
// unknown addresses both report ErrUserNotFound so callers cannot tell
// which case occurred.
func (r *UserRepo) GetActiveByEmail(email string) (*models.User, error) {
	return r.scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ? AND active = 1`, email))
}

// Update updates a user's mutable fields
func (r *UserRepo) Update(user *models.User) error {
	user.UpdatedAt = time.Now()

	result, err := DB.Exec(`
		UPDATE users SET
			pseudo = ?,
			email = ?,
			password_hash = ?,
			first_name = ?,
			last_name = ?,
			role = ?,
			active = ?,
			updated_at = ?
		WHERE id = ?
	`, user.Pseudo, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Role, user.Active, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepo) UpdateLastLogin(id int64) error {
	_, err := DB.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now(), id)
	return err
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// ExistsByPseudo checks if a user with the given pseudo exists
func (r *UserRepo) ExistsByPseudo(pseudo string) (bool, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE pseudo = ?", pseudo).Scan(&count)
	return count > 0, err
}

// ExistsByEmail checks if a user with the given email exists
func (r *UserRepo) ExistsByEmail(email string) (bool, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count)
	return count > 0, err
}
