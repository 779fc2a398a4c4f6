package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Participant rows carry an explicit position so the ledger's insertion
// order survives a round-trip regardless of row retrieval order.
const schema = `
CREATE TABLE IF NOT EXISTS participants (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    amount REAL NOT NULL,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    participant_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    change REAL NOT NULL,
    note TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (participant_id, seq),
    FOREIGN KEY (participant_id) REFERENCES participants(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS editors (
    identity TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_participant_id ON transactions(participant_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
