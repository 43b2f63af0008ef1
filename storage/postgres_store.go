package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

const adColumns = `car_id, brand, model, year, price, description, created_at, mileage,
	location, reference_url, car_ad_id, gear_type, color, fuel_type, condition,
	body_type, owner_count, owner_type, owner_name, owner_member_since,
	owner_last_seen, owner_profile_url, owner_tel_number, additional_options,
	description_detail`

// PostgresStore persists canonical ads in the cars table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, retrying the initial
// ping, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cars (
			car_id             SERIAL PRIMARY KEY,
			brand              VARCHAR(255)  NOT NULL,
			model              VARCHAR(255)  NOT NULL,
			year               INTEGER       NOT NULL,
			price              NUMERIC(12,2),
			description        TEXT          NOT NULL,
			created_at         TIMESTAMPTZ   NOT NULL,
			mileage            INTEGER CHECK (mileage >= 0),
			location           TEXT,
			reference_url      TEXT,
			car_ad_id          VARCHAR(64)   UNIQUE,
			gear_type          VARCHAR(8),
			color              VARCHAR(16),
			fuel_type          VARCHAR(16),
			condition          VARCHAR(16),
			body_type          VARCHAR(64),
			owner_count        VARCHAR(16),
			owner_type         VARCHAR(64),
			owner_name         TEXT,
			owner_member_since TEXT,
			owner_last_seen    TEXT,
			owner_profile_url  TEXT,
			owner_tel_number   VARCHAR(32),
			additional_options TEXT,
			description_detail TEXT,
			CHECK (price IS NULL OR price >= 0)
		);

		CREATE INDEX IF NOT EXISTS idx_cars_cohort    ON cars(brand, model, color);
		CREATE INDEX IF NOT EXISTS idx_cars_composite ON cars(year, created_at);
		CREATE INDEX IF NOT EXISTS idx_cars_price     ON cars(price);
	`)
	return err
}

// ExistsByAdID reports whether an ad with the marketplace id is stored.
func (ps *PostgresStore) ExistsByAdID(ctx context.Context, carAdID string) (bool, error) {
	var exists bool
	err := ps.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cars WHERE car_ad_id = $1)`, carAdID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: exists by ad id: %w", err)
	}
	return exists, nil
}

// ExistsByComposite reports whether an ad with the same year, description
// and timestamp is stored.
func (ps *PostgresStore) ExistsByComposite(ctx context.Context, year int, description string, createdAt time.Time) (bool, error) {
	var exists bool
	err := ps.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM cars WHERE year = $1 AND description = $2 AND created_at = $3
		)`, year, description, createdAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: exists by composite: %w", err)
	}
	return exists, nil
}

// Insert stores one ad and returns its row id. A car_ad_id collision yields
// ErrDuplicate and leaves the table untouched.
func (ps *PostgresStore) Insert(ctx context.Context, ad *models.CanonicalAd) (int64, error) {
	var id int64
	err := ps.db.QueryRowContext(ctx, `
		INSERT INTO cars (brand, model, year, price, description, created_at, mileage,
			location, reference_url, car_ad_id, gear_type, color, fuel_type, condition,
			body_type, owner_count, owner_type, owner_name, owner_member_since,
			owner_last_seen, owner_profile_url, owner_tel_number, additional_options,
			description_detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT (car_ad_id) DO NOTHING
		RETURNING car_id`,
		ad.Brand, ad.Model, ad.Year, ad.Price, ad.Description, ad.CreatedAt, ad.Mileage,
		nullString(ad.Location), nullString(ad.ReferenceURL), nullString(ad.CarAdID),
		nullString(string(ad.GearType)), nullString(string(ad.Color)),
		nullString(string(ad.FuelType)), nullString(string(ad.Condition)),
		nullString(ad.BodyType), nullString(ad.OwnerCount), nullString(ad.OwnerType),
		nullString(ad.OwnerName), nullString(ad.OwnerMemberSince), nullString(ad.OwnerLastSeen),
		nullString(ad.OwnerProfileURL), nullString(ad.OwnerPhone),
		nullString(ad.AdditionalOptions), nullString(ad.DescriptionDetail),
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: insert: %w", err)
	}
	return id, nil
}

// Filter returns the ads matching f, oldest row first.
func (ps *PostgresStore) Filter(ctx context.Context, f Filter) ([]*models.CanonicalAd, error) {
	where, args := f.Where()
	rows, err := ps.db.QueryContext(ctx,
		`SELECT `+adColumns+` FROM cars WHERE `+where+` ORDER BY car_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: filter: %w", err)
	}
	defer rows.Close()

	var ads []*models.CanonicalAd
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

// Get returns one ad by row id.
func (ps *PostgresStore) Get(ctx context.Context, id int64) (*models.CanonicalAd, error) {
	row := ps.db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM cars WHERE car_id = $1`, id)
	ad, err := scanAd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %d: %w", id, err)
	}
	return ad, nil
}

// Delete removes one ad by row id. Only the admin API calls this.
func (ps *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := ps.db.ExecContext(ctx, `DELETE FROM cars WHERE car_id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (*models.CanonicalAd, error) {
	var (
		ad      models.CanonicalAd
		price   sql.NullFloat64
		mileage sql.NullInt64
		text    [17]sql.NullString
	)
	err := row.Scan(
		&ad.ID, &ad.Brand, &ad.Model, &ad.Year, &price, &ad.Description, &ad.CreatedAt, &mileage,
		&text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6],
		&text[7], &text[8], &text[9], &text[10], &text[11], &text[12],
		&text[13], &text[14], &text[15], &text[16],
	)
	if err != nil {
		return nil, err
	}

	if price.Valid {
		p := price.Float64
		ad.Price = &p
	}
	if mileage.Valid {
		m := int(mileage.Int64)
		ad.Mileage = &m
	}
	ad.Location = text[0].String
	ad.ReferenceURL = text[1].String
	ad.CarAdID = text[2].String
	ad.GearType = models.GearType(text[3].String)
	ad.Color = models.Color(text[4].String)
	ad.FuelType = models.FuelType(text[5].String)
	ad.Condition = models.Condition(text[6].String)
	ad.BodyType = text[7].String
	ad.OwnerCount = text[8].String
	ad.OwnerType = text[9].String
	ad.OwnerName = text[10].String
	ad.OwnerMemberSince = text[11].String
	ad.OwnerLastSeen = text[12].String
	ad.OwnerProfileURL = text[13].String
	ad.OwnerPhone = text[14].String
	ad.AdditionalOptions = text[15].String
	ad.DescriptionDetail = text[16].String
	return &ad, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
