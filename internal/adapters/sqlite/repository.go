package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/billed/internal/domain"
	"github.com/csg33k/billed/internal/ports"
)

var _ ports.BillStore = (*Repository)(nil)

//go:embed schema.sql
var schema string

// ReceiptPath is the URL prefix receipts are served under.
const ReceiptPath = "/receipts/"

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database and creates missing tables.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ── Bills ─────────────────────────────────────────────────────────────────────

const billColumns = `id, email, type, name, date, amount, vat, pct,
	commentary, comment_admin, status, file_url, file_name, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(s scanner) (domain.Bill, error) {
	var b domain.Bill
	var status string
	err := s.Scan(
		&b.ID, &b.Email, &b.Type, &b.Name, &b.Date, &b.Amount, &b.VAT, &b.Pct,
		&b.Commentary, &b.CommentAdmin, &status, &b.FileURL, &b.FileName,
		&b.CreatedAt, &b.UpdatedAt,
	)
	b.Status = domain.BillStatus(status)
	return b, err
}

// ListBills returns the bills of email, or all bills when email is empty,
// latest date first.
func (r *Repository) ListBills(ctx context.Context, email string) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE (? = '' OR email = ?)
		ORDER BY date DESC, created_at`, email, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *Repository) GetBill(ctx context.Context, id string) (*domain.Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `
		SELECT `+billColumns+` FROM bills WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveBill inserts b, or updates every field but created_at when a bill with
// the same id exists. An empty id gets a new one.
func (r *Repository) SaveBill(ctx context.Context, b *domain.Bill) error {
	now := time.Now()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = domain.StatusPending
	}
	if !b.Status.Valid() {
		return fmt.Errorf("save bill %s: unknown status %q", b.ID, b.Status)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (`+billColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
		    email=excluded.email, type=excluded.type, name=excluded.name,
		    date=excluded.date, amount=excluded.amount, vat=excluded.vat,
		    pct=excluded.pct, commentary=excluded.commentary,
		    comment_admin=excluded.comment_admin, status=excluded.status,
		    file_url=excluded.file_url, file_name=excluded.file_name,
		    updated_at=excluded.updated_at`,
		b.ID, b.Email, b.Type, b.Name, b.Date, b.Amount, b.VAT, b.Pct,
		b.Commentary, b.CommentAdmin, string(b.Status), b.FileURL, b.FileName,
		now, now,
	)
	if err != nil {
		return err
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

// ── Receipts ──────────────────────────────────────────────────────────────────

// UploadReceipt stores the receipt under a new key and returns the URL it is
// served on.
func (r *Repository) UploadReceipt(ctx context.Context, rc *domain.Receipt) (domain.UploadResult, error) {
	rc.Key = uuid.NewString()
	rc.CreatedAt = time.Now()
	if rc.Content == nil {
		rc.Content = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (receipt_key, email, file_name, content_type, content, created_at)
		VALUES (?,?,?,?,?,?)`,
		rc.Key, rc.Email, rc.FileName, rc.ContentType, rc.Content, rc.CreatedAt,
	)
	if err != nil {
		return domain.UploadResult{}, err
	}
	return domain.UploadResult{
		Key:      rc.Key,
		FileURL:  ReceiptPath + rc.Key,
		FileName: rc.FileName,
	}, nil
}

func (r *Repository) GetReceipt(ctx context.Context, key string) (*domain.Receipt, error) {
	rc := &domain.Receipt{}
	err := r.db.QueryRowContext(ctx, `
		SELECT receipt_key, email, file_name, content_type, content, created_at
		FROM receipts WHERE receipt_key=?`, key).Scan(
		&rc.Key, &rc.Email, &rc.FileName, &rc.ContentType, &rc.Content, &rc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}
