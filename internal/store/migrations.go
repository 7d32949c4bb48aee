package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create scheduler events",
		SQL: `
			CREATE TABLE events (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				start_at    TEXT NOT NULL,
				end_at      TEXT NOT NULL,
				notes       TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_events_start ON events (start_at);
		`,
	},
}
