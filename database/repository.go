package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// BaseRepository generic Repository base
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewBaseRepository creates the base for a Repository
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

// DB returns the underlying instance
func (r *BaseRepository[T]) DB() *gorm.DB {
	return r.db
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return translate(err, "create record")
	}
	return nil
}

// FindByID returns ErrRecordNotFound when no row matches
func (r *BaseRepository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, translate(err, "find record by id")
	}
	return &entity, nil
}

// FindOne returns the first row matching query, or ErrRecordNotFound
func (r *BaseRepository[T]) FindOne(ctx context.Context, query interface{}, args ...interface{}) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where(query, args...).First(&entity).Error; err != nil {
		return nil, translate(err, "find record")
	}
	return &entity, nil
}

func (r *BaseRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, translate(err, "find records")
	}
	return entities, nil
}

func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return translate(err, "update record")
	}
	return nil
}

// Delete soft-deletes when T has a gorm.DeletedAt field
func (r *BaseRepository[T]) Delete(ctx context.Context, id interface{}) error {
	var entity T
	if err := r.db.WithContext(ctx).Delete(&entity, id).Error; err != nil {
		return translate(err, "delete record")
	}
	return nil
}

// Exists reports whether a row matches query
func (r *BaseRepository[T]) Exists(ctx context.Context, query interface{}, args ...interface{}) (bool, error) {
	var count int64
	var entity T
	if err := r.db.WithContext(ctx).Model(&entity).Where(query, args...).Count(&count).Error; err != nil {
		return false, translate(err, "check record existence")
	}
	return count > 0, nil
}

func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	if err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error; err != nil {
		return 0, translate(err, "count records")
	}
	return count, nil
}

// Paginate returns one page (1-based) and the total row count
func (r *BaseRepository[T]) Paginate(ctx context.Context, page, pageSize int) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	var entity T
	if err := r.db.WithContext(ctx).Model(&entity).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count records")
	}

	var entities []T
	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).Offset(offset).Limit(pageSize).Find(&entities).Error; err != nil {
		return nil, 0, translate(err, "find page")
	}
	return entities, total, nil
}

// Transaction runs fn in a transaction bound to ctx
func (r *BaseRepository[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// translate maps gorm errors onto the package's coded errors
func translate(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound.Wrap(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey.Wrap(err)
	default:
		return ErrQueryFailed.WithMsgf("%s failed", action).Wrap(err)
	}
}
