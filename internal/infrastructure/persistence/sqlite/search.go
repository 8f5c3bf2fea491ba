// Package sqlite hosts schema concerns that gorm's automigrate cannot
// express: the FTS5 virtual tables and the triggers that keep them in
// sync with issue and solution mutations. Search reads stay consistent
// because the triggers fire inside the same statement transaction as the
// mutation.
package sqlite

import (
	"context"

	"gorm.io/gorm"

	"sincelast/internal/errs"
)

var searchDDL = []string{
	`CREATE VIRTUAL TABLE IF NOT EXISTS issues_fts USING fts5(
		title,
		description,
		tags,
		content='issues',
		content_rowid='issue_id'
	)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS solutions_fts USING fts5(
		description,
		steps,
		content='solutions',
		content_rowid='solution_id'
	)`,
	`CREATE TRIGGER IF NOT EXISTS issues_fts_insert AFTER INSERT ON issues BEGIN
		INSERT INTO issues_fts(rowid, title, description, tags)
		VALUES (new.issue_id, new.title, new.description, new.tags);
	END`,
	`CREATE TRIGGER IF NOT EXISTS issues_fts_delete AFTER DELETE ON issues BEGIN
		INSERT INTO issues_fts(issues_fts, rowid, title, description, tags)
		VALUES ('delete', old.issue_id, old.title, old.description, old.tags);
	END`,
	`CREATE TRIGGER IF NOT EXISTS issues_fts_update AFTER UPDATE ON issues BEGIN
		INSERT INTO issues_fts(issues_fts, rowid, title, description, tags)
		VALUES ('delete', old.issue_id, old.title, old.description, old.tags);
		INSERT INTO issues_fts(rowid, title, description, tags)
		VALUES (new.issue_id, new.title, new.description, new.tags);
	END`,
	`CREATE TRIGGER IF NOT EXISTS solutions_fts_insert AFTER INSERT ON solutions BEGIN
		INSERT INTO solutions_fts(rowid, description, steps)
		VALUES (new.solution_id, new.description, new.steps);
	END`,
	`CREATE TRIGGER IF NOT EXISTS solutions_fts_delete AFTER DELETE ON solutions BEGIN
		INSERT INTO solutions_fts(solutions_fts, rowid, description, steps)
		VALUES ('delete', old.solution_id, old.description, old.steps);
	END`,
	`CREATE TRIGGER IF NOT EXISTS solutions_fts_update AFTER UPDATE ON solutions BEGIN
		INSERT INTO solutions_fts(solutions_fts, rowid, description, steps)
		VALUES ('delete', old.solution_id, old.description, old.steps);
		INSERT INTO solutions_fts(rowid, description, steps)
		VALUES (new.solution_id, new.description, new.steps);
	END`,
}

// SetupSearch installs the FTS tables and sync triggers. Idempotent.
func SetupSearch(ctx context.Context, db *gorm.DB) error {
	for _, ddl := range searchDDL {
		if err := db.WithContext(ctx).Exec(ddl).Error; err != nil {
			return errs.Wrap(err, "install search schema")
		}
	}
	return nil
}
