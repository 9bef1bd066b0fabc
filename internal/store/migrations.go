package store

// migration is one schema step for the sqlite backend.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of sqlite schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create config_parameters",
		SQL: `
			CREATE TABLE config_parameters (
				key         TEXT PRIMARY KEY,
				value       TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
}
