package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS calendars (
		id VARCHAR NOT NULL PRIMARY KEY,
		name VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id VARCHAR NOT NULL,
		calendar_id VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		uid VARCHAR NOT NULL DEFAULT "",
		name VARCHAR NOT NULL DEFAULT "",
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR NOT NULL,
		version_tag VARCHAR NOT NULL DEFAULT "",
		last_modified VARCHAR NOT NULL DEFAULT "",
		created_at VARCHAR NOT NULL DEFAULT "",
		prod_id VARCHAR NOT NULL DEFAULT "",
		deleted_at VARCHAR NOT NULL DEFAULT "",
		PRIMARY KEY (calendar_id, id),
		FOREIGN KEY (calendar_id) REFERENCES calendars (id)
	)`,
	`CREATE TABLE IF NOT EXISTS sync (
		id INTEGER NOT NULL PRIMARY KEY CHECK (id = 1),
		last_sync VARCHAR NOT NULL DEFAULT ""
	)`,
}
