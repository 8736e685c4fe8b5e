package user_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
	"gorm.io/gorm"
)

type userRow struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"not null"`
	Password  string    `gorm:"not null"`
	Username  string    `gorm:"uniqueIndex;not null"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return UsersCollection }

func (u userRow) toEntity() entity.User {
	return entity.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// publicColumns is the read projection; password is never selected.
var publicColumns = []string{"id", "name", "email", "username", "is_active", "created_at", "updated_at"}

var sortColumns = map[entity.SortField]string{
	entity.SortByCreatedAt: "created_at",
}

// GormUserRepo expects a *gorm.DB opened with TranslateError so unique
// violations surface as gorm.ErrDuplicatedKey.
type GormUserRepo struct {
	DB *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{DB: db}
}

func (r *GormUserRepo) EnsureSchema(ctx context.Context) *app_error.AppError {
	if err := r.DB.WithContext(ctx).AutoMigrate(&userRow{}); err != nil {
		return app_error.NewUnclassifiedError("db-migrate", fmt.Errorf("failed to migrate users table: %w", err))
	}
	return nil
}

func (r *GormUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError) {
	var row userRow
	err := r.DB.WithContext(ctx).Select(publicColumns).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, app_error.NewUnclassifiedError("db-find", fmt.Errorf("failed to fetch user %s: %w", username, err))
	}

	user := row.toEntity()
	return &user, nil
}

func (r *GormUserRepo) Insert(ctx context.Context, model entity.User) (string, *app_error.AppError) {
	row := userRow{
		ID:        uuid.New().String(),
		Name:      model.Name,
		Email:     model.Email,
		Password:  model.Password,
		Username:  model.Username,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	result := r.DB.WithContext(ctx).Create(&row)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", app_error.NewDuplicateKeyError("username", model.Username, err)
		}
		return "", app_error.NewUnclassifiedError("db-create", fmt.Errorf("failed to create user: %w", err))
	}

	if result.RowsAffected == 0 {
		return "", app_error.NewOperationFailedError("db-create", errors.New("insert affected no rows"))
	}

	return row.ID, nil
}

func (r *GormUserRepo) ListSorted(ctx context.Context, field entity.SortField, dir entity.SortDirection) ([]entity.User, *app_error.AppError) {
	column, ok := sortColumns[field]
	if !ok {
		return nil, app_error.NewUnclassifiedError("sort", fmt.Errorf("unsupported sort field %q", field))
	}

	order := column + " DESC"
	if dir == entity.Ascending {
		order = column + " ASC"
	}

	var rows []userRow
	if err := r.DB.WithContext(ctx).Select(publicColumns).Order(order).Find(&rows).Error; err != nil {
		return nil, app_error.NewUnclassifiedError("db-find", fmt.Errorf("failed to list users: %w", err))
	}

	users := make([]entity.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toEntity())
	}
	return users, nil
}
