package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sueliob/backend-pizza/internal/domain"
)

var (
	_ CatalogRepository  = (*PostgresCatalogRepo)(nil)
	_ OrderRepository    = (*PostgresOrderRepo)(nil)
	_ SettingsRepository = (*PostgresSettingsRepo)(nil)
)

// PostgresCatalogRepo implements CatalogRepository.
type PostgresCatalogRepo struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogRepo(db *pgxpool.Pool) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db: db}
}

const flavorColumns = `id, name, description, prices, category, image_url, available, created_at, updated_at`

func (r *PostgresCatalogRepo) ListFlavors(ctx context.Context, onlyAvailable bool) ([]domain.Flavor, error) {
	q := `SELECT ` + flavorColumns + ` FROM pizza_flavors`
	if onlyAvailable {
		q += ` WHERE available = true`
	}
	q += ` ORDER BY name`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list flavors: %w", err)
	}
	defer rows.Close()
	return collectFlavors(rows)
}

func (r *PostgresCatalogRepo) ListFlavorsByCategory(ctx context.Context, category string) ([]domain.Flavor, error) {
	q := `SELECT ` + flavorColumns + ` FROM pizza_flavors WHERE category = $1 AND available = true ORDER BY name`
	rows, err := r.db.Query(ctx, q, category)
	if err != nil {
		return nil, fmt.Errorf("list flavors by category: %w", err)
	}
	defer rows.Close()
	return collectFlavors(rows)
}

func (r *PostgresCatalogRepo) CreateFlavor(ctx context.Context, f domain.Flavor) (domain.Flavor, error) {
	q := `INSERT INTO pizza_flavors (id, name, description, prices, category, image_url, available)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)
	      RETURNING ` + flavorColumns
	row := r.db.QueryRow(ctx, q, uuid.NewString(), f.Name, f.Description, f.Prices, f.Category, f.ImageURL, f.Available)
	out, err := scanFlavor(row)
	if err != nil {
		return domain.Flavor{}, fmt.Errorf("create flavor: %w", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) UpdateFlavor(ctx context.Context, id string, f domain.Flavor) (domain.Flavor, error) {
	q := `UPDATE pizza_flavors
	         SET name = $2, description = $3, prices = $4, category = $5,
	             image_url = $6, available = $7, updated_at = now()
	       WHERE id = $1
	      RETURNING ` + flavorColumns
	row := r.db.QueryRow(ctx, q, id, f.Name, f.Description, f.Prices, f.Category, f.ImageURL, f.Available)
	out, err := scanFlavor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Flavor{}, ErrNotFound
	}
	if err != nil {
		return domain.Flavor{}, fmt.Errorf("update flavor: %w", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) BulkInsertFlavors(ctx context.Context, fs []domain.Flavor) (int, error) {
	batch := &pgx.Batch{}
	for _, f := range fs {
		batch.Queue(`INSERT INTO pizza_flavors (id, name, description, prices, category, image_url, available)
		             VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), f.Name, f.Description, f.Prices, f.Category, f.ImageURL, f.Available)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("bulk insert flavors: %w", err)
	}
	return len(fs), nil
}

const extraColumns = `id, name, price, category, available, created_at, updated_at`

func (r *PostgresCatalogRepo) ListExtras(ctx context.Context, onlyAvailable bool) ([]domain.Extra, error) {
	q := `SELECT ` + extraColumns + ` FROM extras`
	if onlyAvailable {
		q += ` WHERE available = true`
	}
	q += ` ORDER BY name`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list extras: %w", err)
	}
	defer rows.Close()

	out := []domain.Extra{}
	for rows.Next() {
		var e domain.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.Price, &e.Category, &e.Available, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresCatalogRepo) CreateExtra(ctx context.Context, e domain.Extra) (domain.Extra, error) {
	q := `INSERT INTO extras (id, name, price, category, available)
	      VALUES ($1, $2, $3, $4, $5)
	      RETURNING ` + extraColumns
	row := r.db.QueryRow(ctx, q, uuid.NewString(), e.Name, e.Price, e.Category, e.Available)
	var out domain.Extra
	if err := row.Scan(&out.ID, &out.Name, &out.Price, &out.Category, &out.Available, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domain.Extra{}, fmt.Errorf("create extra: %w", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) UpdateExtra(ctx context.Context, id string, e domain.Extra) (domain.Extra, error) {
	q := `UPDATE extras
	         SET name = $2, price = $3, category = $4, available = $5, updated_at = now()
	       WHERE id = $1
	      RETURNING ` + extraColumns
	row := r.db.QueryRow(ctx, q, id, e.Name, e.Price, e.Category, e.Available)
	var out domain.Extra
	err := row.Scan(&out.ID, &out.Name, &out.Price, &out.Category, &out.Available, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Extra{}, ErrNotFound
	}
	if err != nil {
		return domain.Extra{}, fmt.Errorf("update extra: %w", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) BulkInsertExtras(ctx context.Context, es []domain.Extra) (int, error) {
	batch := &pgx.Batch{}
	for _, e := range es {
		batch.Queue(`INSERT INTO extras (id, name, price, category, available)
		             VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), e.Name, e.Price, e.Category, e.Available)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("bulk insert extras: %w", err)
	}
	return len(es), nil
}

const doughColumns = `id, name, description, price, available, created_at, updated_at`

func (r *PostgresCatalogRepo) ListDoughTypes(ctx context.Context, onlyAvailable bool) ([]domain.DoughType, error) {
	q := `SELECT ` + doughColumns + ` FROM dough_types`
	if onlyAvailable {
		q += ` WHERE available = true`
	}
	q += ` ORDER BY name`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list dough types: %w", err)
	}
	defer rows.Close()

	out := []domain.DoughType{}
	for rows.Next() {
		var d domain.DoughType
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Available, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan dough type: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresCatalogRepo) CreateDoughType(ctx context.Context, d domain.DoughType) (domain.DoughType, error) {
	q := `INSERT INTO dough_types (id, name, description, price, available)
	      VALUES ($1, $2, $3, $4, $5)
	      RETURNING ` + doughColumns
	row := r.db.QueryRow(ctx, q, uuid.NewString(), d.Name, d.Description, d.Price, d.Available)
	var out domain.DoughType
	if err := row.Scan(&out.ID, &out.Name, &out.Description, &out.Price, &out.Available, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domain.DoughType{}, fmt.Errorf("create dough type: %w", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) UpdateDoughType(ctx context.Context, id string, d domain.DoughType) (domain.DoughType, error) {
	q := `UPDATE dough_types
	         SET name = $2, description = $3, price = $4, available = $5, updated_at = now()
	       WHERE id = $1
	      RETURNING ` + doughColumns
	row := r.db.QueryRow(ctx, q, id, d.Name, d.Description, d.Price, d.Available)
	var out domain.DoughType
	err := row.Scan(&out.ID, &out.Name, &out.Description, &out.Price, &out.Available, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DoughType{}, ErrNotFound
	}
	if err != nil {
		return domain.DoughType{}, fmt.Errorf("update dough type: %w", err)
	}
	return out, nil
}

func (r *PostgresCatalogRepo) BulkInsertDoughTypes(ctx context.Context, ds []domain.DoughType) (int, error) {
	batch := &pgx.Batch{}
	for _, d := range ds {
		batch.Queue(`INSERT INTO dough_types (id, name, description, price, available)
		             VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), d.Name, d.Description, d.Price, d.Available)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("bulk insert dough types: %w", err)
	}
	return len(ds), nil
}

func (r *PostgresCatalogRepo) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pizza_flavors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func collectFlavors(rows pgx.Rows) ([]domain.Flavor, error) {
	out := []domain.Flavor{}
	for rows.Next() {
		f, err := scanFlavor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flavor: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFlavor(row pgx.Row) (domain.Flavor, error) {
	var f domain.Flavor
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Prices, &f.Category,
		&f.ImageURL, &f.Available, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// PostgresOrderRepo implements OrderRepository.
type PostgresOrderRepo struct {
	db *pgxpool.Pool
}

func NewPostgresOrderRepo(db *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

const orderColumns = `id, customer_name, customer_phone, delivery_method, address, payment_method,
	items, subtotal, delivery_fee, total, notes, status, created_at`

func (r *PostgresOrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if o.DeliveryFee == "" {
		o.DeliveryFee = "0"
	}
	q := `INSERT INTO orders (id, customer_name, customer_phone, delivery_method, address,
	                          payment_method, items, subtotal, delivery_fee, total, notes, status)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	      RETURNING ` + orderColumns
	row := r.db.QueryRow(ctx, q, uuid.NewString(), o.CustomerName, o.CustomerPhone, o.DeliveryMethod,
		o.Address, o.PaymentMethod, o.Items, o.Subtotal, o.DeliveryFee, o.Total, o.Notes, o.Status)
	out, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return out, nil
}

func (r *PostgresOrderRepo) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *PostgresOrderRepo) SumTotals(ctx context.Context) (float64, error) {
	var sum float64
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total::numeric), 0) FROM orders`).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum order totals: %w", err)
	}
	return sum, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.DeliveryMethod, &o.Address,
		&o.PaymentMethod, &o.Items, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.Notes, &o.Status, &o.CreatedAt)
	return o, err
}

// PostgresSettingsRepo implements SettingsRepository.
type PostgresSettingsRepo struct {
	db *pgxpool.Pool
}

func NewPostgresSettingsRepo(db *pgxpool.Pool) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

func (r *PostgresSettingsRepo) GetAll(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT section, data, updated_at FROM pizzeria_settings`)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	out := []domain.Setting{}
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Section, &s.Data, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresSettingsRepo) GetSection(ctx context.Context, section string) (domain.Setting, error) {
	var s domain.Setting
	err := r.db.QueryRow(ctx,
		`SELECT section, data, updated_at FROM pizzeria_settings WHERE section = $1`, section,
	).Scan(&s.Section, &s.Data, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Setting{}, ErrNotFound
	}
	if err != nil {
		return domain.Setting{}, fmt.Errorf("get setting section: %w", err)
	}
	return s, nil
}

func (r *PostgresSettingsRepo) Upsert(ctx context.Context, section string, data []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO pizzeria_settings (section, data)
		 VALUES ($1, $2)
		 ON CONFLICT (section) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		section, data)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
