package repo

import (
	"context"
	"fmt"
	"strings"

	dom "Essence/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EssenceFilter is the conjunctive filter for List. Nil pointer = filter not applied.
// Name is a case-insensitive substring match; empty string = not applied.
type EssenceFilter struct {
	Name        string
	IsDone      *bool
	MinQuantity *int64
	MaxQuantity *int64
	Limit       int
	Offset      int
}

type EssenceRepo interface {
	Create(ctx context.Context, e dom.Essence) (dom.Essence, error)
	CreateBatch(ctx context.Context, es []dom.Essence) ([]dom.Essence, error)
	GetByID(ctx context.Context, id int64) (dom.Essence, error)
	List(ctx context.Context, f EssenceFilter) ([]dom.Essence, error)
	Update(ctx context.Context, id int64, e dom.Essence) (dom.Essence, error)
	Delete(ctx context.Context, id int64) error
}

type PGEssenceRepo struct {
	db *pgxpool.Pool
}

func NewPGEssenceRepo(db *pgxpool.Pool) *PGEssenceRepo {
	return &PGEssenceRepo{db: db}
}

func (r *PGEssenceRepo) Create(ctx context.Context, e dom.Essence) (dom.Essence, error) {
	query := `
		INSERT INTO essences (name, quantity, is_done)
		VALUES ($1, $2, $3)
		RETURNING id, name, quantity, is_done`
	var out dom.Essence
	err := r.db.QueryRow(ctx, query, e.Name, e.Quantity, e.IsDone).Scan(
		&out.ID, &out.Name, &out.Quantity, &out.IsDone,
	)
	return out, err
}

// CreateBatch inserts all rows in one transaction: either every row commits or none do.
func (r *PGEssenceRepo) CreateBatch(ctx context.Context, es []dom.Essence) ([]dom.Essence, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO essences (name, quantity, is_done)
		VALUES ($1, $2, $3)
		RETURNING id, name, quantity, is_done`
	out := make([]dom.Essence, 0, len(es))
	for _, e := range es {
		var row dom.Essence
		if err := tx.QueryRow(ctx, query, e.Name, e.Quantity, e.IsDone).Scan(
			&row.ID, &row.Name, &row.Quantity, &row.IsDone,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *PGEssenceRepo) GetByID(ctx context.Context, id int64) (dom.Essence, error) {
	query := `SELECT id, name, quantity, is_done FROM essences WHERE id = $1`
	var e dom.Essence
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.Quantity, &e.IsDone)
	return e, err
}

func (r *PGEssenceRepo) List(ctx context.Context, f EssenceFilter) ([]dom.Essence, error) {
	query := `SELECT id, name, quantity, is_done FROM essences`
	var conds []string
	var args []any

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.IsDone != nil {
		args = append(args, *f.IsDone)
		conds = append(conds, fmt.Sprintf("is_done = $%d", len(args)))
	}
	if f.MinQuantity != nil {
		args = append(args, *f.MinQuantity)
		conds = append(conds, fmt.Sprintf("quantity >= $%d", len(args)))
	}
	if f.MaxQuantity != nil {
		args = append(args, *f.MaxQuantity)
		conds = append(conds, fmt.Sprintf("quantity <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// id ASC is creation order under a serial key.
	query += " ORDER BY id"
	args = append(args, f.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Essence
	for rows.Next() {
		var e dom.Essence
		if err := rows.Scan(&e.ID, &e.Name, &e.Quantity, &e.IsDone); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *PGEssenceRepo) Update(ctx context.Context, id int64, e dom.Essence) (dom.Essence, error) {
	query := `
		UPDATE essences SET name = $2, quantity = $3, is_done = $4
		WHERE id = $1
		RETURNING id, name, quantity, is_done`
	var out dom.Essence
	err := r.db.QueryRow(ctx, query, id, e.Name, e.Quantity, e.IsDone).Scan(
		&out.ID, &out.Name, &out.Quantity, &out.IsDone,
	)
	return out, err
}

// Delete removes the row permanently. Returns pgx.ErrNoRows if no row matched.
func (r *PGEssenceRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM essences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
