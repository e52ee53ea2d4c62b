// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/otrans-go/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// ContentStore provides access to content items, translation links,
// metadata and taxonomy terms.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a content store backed by the given database.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, type, title, slug, body, excerpt, lang, status, author_id, thumbnail_id, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.ContentItem, error) {
	item := &model.ContentItem{}
	err := row.Scan(&item.ID, &item.Type, &item.Title, &item.Slug, &item.Body, &item.Excerpt,
		&item.Lang, &item.Status, &item.AuthorID, &item.ThumbnailID, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning content item: %w", err)
	}
	return item, nil
}

// Get returns a content item by ID.
func (s *ContentStore) Get(ctx context.Context, id int64) (*model.ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)
	return scanItem(row)
}

// Create inserts a new content item and returns its ID.
func (s *ContentStore) Create(ctx context.Context, item *model.ContentItem) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO content_items (type, title, slug, body, excerpt, lang, status, author_id, thumbnail_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		item.Type, item.Title, item.Slug, item.Body, item.Excerpt,
		item.Lang, item.Status, item.AuthorID, item.ThumbnailID)
	if err != nil {
		return 0, fmt.Errorf("creating content item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	item.ID = id
	return id, nil
}

// Update rewrites the translatable fields and status of an existing item.
func (s *ContentStore) Update(ctx context.Context, item *model.ContentItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content_items
		SET title = ?, slug = ?, body = ?, excerpt = ?, lang = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		item.Title, item.Slug, item.Body, item.Excerpt, item.Lang, item.Status, item.ID)
	if err != nil {
		return fmt.Errorf("updating content item %d: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating content item %d: %w", item.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLanguage assigns the language tag of an item.
func (s *ContentStore) SetLanguage(ctx context.Context, id int64, lang string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE content_items SET lang = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, lang, id)
	if err != nil {
		return fmt.Errorf("setting language of item %d: %w", id, err)
	}
	return nil
}

// SetThumbnail assigns the thumbnail reference of an item.
func (s *ContentStore) SetThumbnail(ctx context.Context, id int64, thumbnail sql.NullInt64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE content_items SET thumbnail_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, thumbnail, id)
	if err != nil {
		return fmt.Errorf("setting thumbnail of item %d: %w", id, err)
	}
	return nil
}

// ListFilter narrows List results. Zero values mean "any".
type ListFilter struct {
	Type   string
	Status string
	Lang   string
	Limit  int
	Offset int
}

// List returns content items matching the filter, newest-modified first.
func (s *ContentStore) List(ctx context.Context, f ListFilter) ([]*model.ContentItem, error) {
	var conds []string
	var args []any
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Lang != "" {
		conds = append(conds, "lang = ?")
		args = append(args, f.Lang)
	}
	query := `SELECT ` + contentColumns + ` FROM content_items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing content items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*model.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content items: %w", err)
	}
	return items, nil
}

// Links returns the translation link table of an item: lang -> sibling ID.
func (s *ContentStore) Links(ctx context.Context, id int64) (model.TranslationLinks, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lang, sibling_id FROM translation_links WHERE item_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("loading links of item %d: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	links := make(model.TranslationLinks)
	for rows.Next() {
		var lang string
		var sibling int64
		if err := rows.Scan(&lang, &sibling); err != nil {
			return nil, fmt.Errorf("scanning link row: %w", err)
		}
		links[lang] = sibling
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating link rows: %w", err)
	}
	return links, nil
}

// Link records a symmetric translation link between two items in one
// transaction: a gains a link to b under b's language and vice versa.
func (s *ContentStore) Link(ctx context.Context, aID int64, aLang string, bID int64, bLang string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning link transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `INSERT INTO translation_links (item_id, lang, sibling_id)
		VALUES (?, ?, ?)
		ON CONFLICT(item_id, lang) DO UPDATE SET sibling_id = excluded.sibling_id`
	if _, err := tx.ExecContext(ctx, upsert, aID, bLang, bID); err != nil {
		return fmt.Errorf("linking %d -> %d: %w", aID, bID, err)
	}
	if _, err := tx.ExecContext(ctx, upsert, bID, aLang, aID); err != nil {
		return fmt.Errorf("linking %d -> %d: %w", bID, aID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing link transaction: %w", err)
	}
	return nil
}

// Meta returns one metadata value. Missing keys return ErrNotFound.
func (s *ContentStore) Meta(ctx context.Context, id int64, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM content_meta WHERE item_id = ? AND key = ?`, id, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading meta %q of item %d: %w", key, id, err)
	}
	return value, nil
}

// SetMeta writes one metadata value.
func (s *ContentStore) SetMeta(ctx context.Context, id int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_meta (item_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(item_id, key) DO UPDATE SET value = excluded.value`,
		id, key, value)
	if err != nil {
		return fmt.Errorf("setting meta %q of item %d: %w", key, id, err)
	}
	return nil
}

// DeleteMeta removes one metadata key.
func (s *ContentStore) DeleteMeta(ctx context.Context, id int64, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM content_meta WHERE item_id = ? AND key = ?`, id, key)
	if err != nil {
		return fmt.Errorf("deleting meta %q of item %d: %w", key, id, err)
	}
	return nil
}

// ItemsWithMeta returns items that carry the given metadata key,
// optionally restricted by status.
func (s *ContentStore) ItemsWithMeta(ctx context.Context, key, status string) ([]*model.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items
		WHERE id IN (SELECT item_id FROM content_meta WHERE key = ?)`
	args := []any{key}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items with meta %q: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var items []*model.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items with meta: %w", err)
	}
	return items, nil
}

// Terms returns the taxonomy terms attached to an item.
func (s *ContentStore) Terms(ctx context.Context, id int64) ([]model.Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.taxonomy, t.name, t.slug
		FROM terms t
		JOIN content_terms ct ON ct.term_id = t.id
		WHERE ct.item_id = ?
		ORDER BY t.taxonomy, t.name`, id)
	if err != nil {
		return nil, fmt.Errorf("loading terms of item %d: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var terms []model.Term
	for rows.Next() {
		var t model.Term
		if err := rows.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scanning term row: %w", err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating term rows: %w", err)
	}
	return terms, nil
}

// AttachTerm attaches a taxonomy term to an item.
func (s *ContentStore) AttachTerm(ctx context.Context, itemID, termID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_terms (item_id, term_id) VALUES (?, ?)
		ON CONFLICT(item_id, term_id) DO NOTHING`, itemID, termID)
	if err != nil {
		return fmt.Errorf("attaching term %d to item %d: %w", termID, itemID, err)
	}
	return nil
}

// CreateTerm inserts a taxonomy term, returning the existing ID when the
// (taxonomy, slug) pair is already present.
func (s *ContentStore) CreateTerm(ctx context.Context, t *model.Term) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM terms WHERE taxonomy = ? AND slug = ?`, t.Taxonomy, t.Slug).Scan(&id)
	if err == nil {
		t.ID = id
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up term: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO terms (taxonomy, name, slug) VALUES (?, ?, ?)`, t.Taxonomy, t.Name, t.Slug)
	if err != nil {
		return 0, fmt.Errorf("creating term: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading term id: %w", err)
	}
	t.ID = id
	return id, nil
}
