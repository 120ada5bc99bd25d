package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/dmitrijs2005/agenda/internal/dbx"
	"github.com/dmitrijs2005/agenda/internal/models"
)

const selectColumns = `SELECT id, owner_identifier, owner_user_id, name, phone, address, age, hobbies,
		latitude, longitude, profile_image, created_at FROM contacts`

// SQLRepository implements Repository on database/sql for SQLite and PostgreSQL.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.SQLite}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.Postgres}
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Contact) error {
	query := `INSERT INTO contacts (id, owner_identifier, owner_user_id, name, phone, address, age, hobbies,
		latitude, longitude, profile_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.q(query),
		c.ID, nullString(&c.OwnerIdentifier), nullString(c.OwnerUserID), c.Name,
		nullString(c.Phone), nullString(c.Address), nullInt(c.Age), nullString(c.Hobbies),
		nullFloat(c.Latitude), nullFloat(c.Longitude), nullString(c.ProfileImage),
		c.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, owner, id string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, r.q(selectColumns+` WHERE id = ? AND owner_identifier = ?`), id, owner)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if errors.Is(err, common.ErrMalformedRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) ListByOwner(ctx context.Context, owner string) ([]models.Contact, error) {
	query := selectColumns + ` WHERE owner_identifier = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, r.q(query), owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			if errors.Is(err, common.ErrMalformedRecord) {
				return nil, err
			}
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	models.SortByName(result)
	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, owner string, c *models.Contact) error {
	query := `UPDATE contacts SET name = ?, phone = ?, address = ?, age = ?, hobbies = ?,
		latitude = ?, longitude = ?, profile_image = ?
		WHERE id = ? AND owner_identifier = ?`

	res, err := r.db.ExecContext(ctx, r.q(query),
		c.Name, nullString(c.Phone), nullString(c.Address), nullInt(c.Age), nullString(c.Hobbies),
		nullFloat(c.Latitude), nullFloat(c.Longitude), nullString(c.ProfileImage),
		c.ID, owner)
	return affectedOne(res, err)
}

func (r *SQLRepository) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM contacts WHERE id = ? AND owner_identifier = ?`), id, owner)
	return affectedOne(res, err)
}

func (r *SQLRepository) AssignOrphans(ctx context.Context, owner string) (int64, error) {
	query := `UPDATE contacts SET owner_identifier = ? WHERE owner_identifier IS NULL OR owner_identifier = ''`
	return r.exec(ctx, query, owner)
}

func (r *SQLRepository) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	query := `UPDATE contacts SET owner_identifier = ? WHERE lower(owner_identifier) = lower(?)`
	return r.exec(ctx, query, to, from)
}

func (r *SQLRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.exec(ctx, `DELETE FROM contacts`)
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*models.Contact, error) {
	var (
		c                              models.Contact
		owner, ownerUserID, name       sql.NullString
		phone, address, hobbies, image sql.NullString
		age                            sql.NullInt64
		latitude, longitude            sql.NullFloat64
		created                        int64
	)
	err := s.Scan(&c.ID, &owner, &ownerUserID, &name, &phone, &address, &age, &hobbies,
		&latitude, &longitude, &image, &created)
	if err != nil {
		return nil, err
	}

	c.OwnerIdentifier = owner.String
	c.OwnerUserID = stringPtr(ownerUserID)
	c.Name = name.String
	c.Phone = stringPtr(phone)
	c.Address = stringPtr(address)
	c.Hobbies = stringPtr(hobbies)
	c.ProfileImage = stringPtr(image)
	if age.Valid {
		v := int(age.Int64)
		c.Age = &v
	}
	if latitude.Valid {
		v := latitude.Float64
		c.Latitude = &v
	}
	if longitude.Valid {
		v := longitude.Float64
		c.Longitude = &v
	}
	c.CreatedAt = time.UnixMilli(created).UTC()

	if err := c.CheckDecoded(); err != nil {
		return nil, err
	}
	return &c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	v := ns.String
	return &v
}
