// Package index keeps a SQLite mirror of the current page versions so
// tag and listing queries do not have to walk and parse every file.
package index

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *sql.DB) error {
	_, err := db.Exec(`
-- Index of the current page versions, rebuilt from the content directory.
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    base TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
    name TEXT PRIMARY KEY NOT NULL
);

CREATE TABLE IF NOT EXISTS page_tag (
    page_id INTEGER NOT NULL,
    tag_id TEXT NOT NULL,
    PRIMARY KEY(page_id, tag_id) ON CONFLICT IGNORE,
    FOREIGN KEY(page_id) REFERENCES pages(id),
    FOREIGN KEY(tag_id) REFERENCES tags(name)
);
`)
	return err
}
