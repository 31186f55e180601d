package db

import (
	"database/sql"
	"log"
)

const (
	sqlCreateCommentBackupTable = `CREATE TABLE IF NOT EXISTS comment_backup (
		parent_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		comment_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (parent_id, position)
	)`

	sqlCreateCommentBackupIndices = `
		CREATE INDEX IF NOT EXISTS idx_comment_backup_saved_at ON comment_backup(saved_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_comment_backup_comment ON comment_backup(parent_id, comment_id);
	`
)

// RunMigrations executes all database migrations
func (db *DB) RunMigrations() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if err := db.createTableIfNotExists(tx, sqlCreateCommentBackupTable, "comment_backup"); err != nil {
			return err
		}
		if _, err := tx.Exec(sqlCreateCommentBackupIndices); err != nil {
			log.Printf("Warning: Failed to create comment_backup indices: %v", err)
		}
		return nil
	})
}

func (db *DB) createTableIfNotExists(tx *sql.Tx, createSQL string, tableName string) error {
	_, err := tx.Exec(createSQL)
	if err != nil {
		log.Printf("Error creating table %s: %v", tableName, err)
		return err
	}
	log.Printf("Table %s created or already exists", tableName)
	return nil
}
