package sqlite

import "database/sql"

// schema sets up the single documents table. Bodies are JSON; filters and
// ordering use json_extract, so no per-collection tables are needed.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    body TEXT NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`

// runMigrations executes the schema setup. These run on startup to ensure
// tables exist.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
