package sqlite

// schema contains the database schema DDL. It is safe to run on every start.
const schema = `
-- Ingredients, keyed by name. last_edited holds an RFC 3339 UTC timestamp.
CREATE TABLE IF NOT EXISTS ingredients (
    name TEXT PRIMARY KEY,
    quantity INTEGER NOT NULL,
    unit TEXT NOT NULL,
    last_edited TEXT NOT NULL
);
`
