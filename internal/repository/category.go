package repository

import (
	"context"

	"github.com/quickremind/quickremind/internal/database"
	"github.com/quickremind/quickremind/internal/models"
)

type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Category, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT category_id, user_id, category_name, usage_count
		 FROM category WHERE user_id = $1 ORDER BY usage_count DESC, category_name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		cat := &models.Category{}
		if err := rows.Scan(&cat.CategoryID, &cat.UserID, &cat.CategoryName, &cat.UsageCount); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetOrCreateByName returns the user's category with that name, creating it
// on first use.
func (r *CategoryRepository) GetOrCreateByName(ctx context.Context, userID int64, name string) (*models.Category, error) {
	cat := &models.Category{}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO category (user_id, category_name, usage_count)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (user_id, category_name) DO NOTHING
		 RETURNING category_id, user_id, category_name, usage_count`,
		userID, name,
	).Scan(&cat.CategoryID, &cat.UserID, &cat.CategoryName, &cat.UsageCount)
	if err != nil {
		// The insert hit the conflict; the row already exists.
		err = r.db.Pool.QueryRow(ctx,
			`SELECT category_id, user_id, category_name, usage_count
			 FROM category WHERE user_id = $1 AND category_name = $2`,
			userID, name,
		).Scan(&cat.CategoryID, &cat.UserID, &cat.CategoryName, &cat.UsageCount)
		if err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (r *CategoryRepository) IncrementUsage(ctx context.Context, userID int64, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE category SET usage_count = usage_count + 1
		 WHERE user_id = $1 AND category_name = $2`,
		userID, name,
	)
	return err
}

// Rename changes a category's name. Reminders referencing the old name are
// updated separately by the reminder repository.
func (r *CategoryRepository) Rename(ctx context.Context, userID int64, from, to string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE category SET category_name = $1 WHERE user_id = $2 AND category_name = $3`,
		to, userID, from,
	)
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, userID int64, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM category WHERE user_id = $1 AND category_name = $2`,
		userID, name,
	)
	return err
}
