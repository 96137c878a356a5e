package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guzmanc1/RikiWiki/internal/models"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// Entry is an indexed page reference.
type Entry struct {
	URL   string
	Title string
}

// TagCount is a tag together with the number of pages carrying it.
type TagCount struct {
	Name  string
	Pages int
}

// Repository provides access to the page index.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new index repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// UpsertPage replaces the indexed copy of the page. Older versions of
// the same file share its base URL and are replaced along with it.
func (r *Repository) UpsertPage(ctx context.Context, page *models.Page) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := removeByBase(ctx, tx, wiki.BaseURL(page.URL)); err != nil {
		return err
	}
	if err := insertPage(ctx, tx, page); err != nil {
		return err
	}
	if err := pruneTags(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePage drops the page, any indexed version of it, and tags that
// become unused.
func (r *Repository) DeletePage(ctx context.Context, url string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := removeByBase(ctx, tx, wiki.BaseURL(url)); err != nil {
		return err
	}
	if err := pruneTags(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Rebuild resets the index to exactly the given pages.
func (r *Repository) Rebuild(ctx context.Context, pages []*models.Page) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"page_tag", "pages", "tags"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	for _, page := range pages {
		if err := insertPage(ctx, tx, page); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PageCount reports how many pages are indexed.
func (r *Repository) PageCount(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&count)
	return count, err
}

// Tags lists every tag with its page count, sorted by name.
func (r *Repository) Tags(ctx context.Context) ([]TagCount, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.name, COUNT(pt.page_id)
		FROM tags t JOIN page_tag pt ON pt.tag_id = t.name
		GROUP BY t.name ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Pages); err != nil {
			return nil, err
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

// PagesForTag lists the pages carrying the tag, sorted by title.
func (r *Repository) PagesForTag(ctx context.Context, tag string) ([]Entry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.name, p.title
		FROM pages p JOIN page_tag pt ON pt.page_id = p.id
		WHERE pt.tag_id = ? ORDER BY p.title COLLATE NOCASE`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.URL, &e.Title); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func insertPage(ctx context.Context, tx *sql.Tx, page *models.Page) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO pages (name, base, title, body) VALUES (?, ?, ?, ?)",
		page.URL, wiki.BaseURL(page.URL), page.Title(), page.Body)
	if err != nil {
		return fmt.Errorf("error indexing page %s: %w", page.URL, err)
	}
	pageID, _ := res.LastInsertId()

	for _, tag := range page.TagList() {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", tag); err != nil {
			return fmt.Errorf("error indexing tag %s: %w", tag, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO page_tag (page_id, tag_id) VALUES (?, ?)", pageID, tag); err != nil {
			return fmt.Errorf("error linking tag %s: %w", tag, err)
		}
	}
	return nil
}

func removeByBase(ctx context.Context, tx *sql.Tx, base string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM page_tag WHERE page_id IN (SELECT id FROM pages WHERE base = ?)", base); err != nil {
		return fmt.Errorf("error unlinking tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE base = ?", base); err != nil {
		return fmt.Errorf("error removing page: %w", err)
	}
	return nil
}

func pruneTags(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tags WHERE name NOT IN (SELECT DISTINCT tag_id FROM page_tag)"); err != nil {
		return fmt.Errorf("error pruning tags: %w", err)
	}
	return nil
}
