package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mca-api/internal/domain"
)

const categoryColumns = `c.id, c.year, c.name, c.description, c.type, c.mode, c.is_required, c.max_nominations,
	c.min_length, c.max_length, c.min_bpm, c.max_bpm, c.min_sr, c.max_sr, c.min_cs, c.max_cs`

type PgCategoryRepository struct {
	db querier
}

func NewCategoryRepository(db querier) *PgCategoryRepository {
	return &PgCategoryRepository{db: db}
}

// categoryDest collects the scan targets for categoryColumns
type categoryDest struct {
	category domain.Category
	typ      string
	mode     string
	filter   domain.CategoryFilter
}

func (d *categoryDest) targets() []any {
	return []any{
		&d.category.ID, &d.category.Year, &d.category.Name, &d.category.Description,
		&d.typ, &d.mode, &d.category.IsRequired, &d.category.MaxNominations,
		&d.filter.MinLength, &d.filter.MaxLength, &d.filter.MinBPM, &d.filter.MaxBPM,
		&d.filter.MinSR, &d.filter.MaxSR, &d.filter.MinCS, &d.filter.MaxCS,
	}
}

func (d *categoryDest) result() *domain.Category {
	c := d.category
	c.Type = domain.CategoryType(d.typ)
	c.Mode = domain.Mode(d.mode)
	if !d.filter.IsEmpty() {
		filter := d.filter
		c.Filter = &filter
	}
	return &c
}

// GetByID gets a category by ID
func (r *PgCategoryRepository) GetByID(ctx context.Context, id int) (*domain.Category, error) {
	var dest categoryDest
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(dest.targets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return dest.result(), nil
}

// ListByYear lists the categories of a cycle in display order
func (r *PgCategoryRepository) ListByYear(ctx context.Context, year int) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.year = $1
		ORDER BY c.is_required DESC, c.type, c.mode, c.id`

	rows, err := r.db.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var dest categoryDest
		if err := rows.Scan(dest.targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, dest.result())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// Create creates a category
func (r *PgCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	filter := c.Filter
	if filter == nil {
		filter = &domain.CategoryFilter{}
	}
	query := `
		INSERT INTO categories (
			year, name, description, type, mode, is_required, max_nominations,
			min_length, max_length, min_bpm, max_bpm, min_sr, max_sr, min_cs, max_cs
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		c.Year, c.Name, c.Description, string(c.Type), string(c.Mode), c.IsRequired, c.MaxNominations,
		filter.MinLength, filter.MaxLength, filter.MinBPM, filter.MaxBPM,
		filter.MinSR, filter.MaxSR, filter.MinCS, filter.MaxCS,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}
