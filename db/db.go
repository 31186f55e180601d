package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/deemkeen/feedsync/domain"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the local comments backup. It is never authoritative: entries only
// bridge a restart until the server list is fetched again.
type DB struct {
	db *sql.DB
}

var (
	dbInstance *DB
	dbErr      error
	dbOnce     sync.Once
)

const (
	sqlInsertComment = `INSERT INTO comment_backup(parent_id, position, comment_id, payload, saved_at) VALUES (?, ?, ?, ?, ?)`
	sqlDeleteParent  = `DELETE FROM comment_backup WHERE parent_id = ?`
	sqlSelectParent  = `SELECT payload FROM comment_backup WHERE parent_id = ? ORDER BY position ASC`
	sqlSelectAll     = `SELECT parent_id, payload FROM comment_backup ORDER BY parent_id ASC, position ASC`
	sqlDeleteBefore  = `DELETE FROM comment_backup WHERE saved_at < ?`
	sqlCountParents  = `SELECT COUNT(DISTINCT parent_id) FROM comment_backup`
)

// GetDB opens the backup at path once per process
func GetDB(path string) (*DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = Open(path)
	})
	return dbInstance, dbErr
}

// Open connects to the sqlite file at path and runs migrations
func Open(path string) (*DB, error) {
	log.Printf("Using comments backup at: %s", path)

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup db: %w", err)
	}

	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	var journalMode string
	if err := sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		log.Printf("Warning: Failed to enable WAL mode: %v", err)
	} else {
		log.Printf("Backup journal mode: %s", journalMode)
	}
	sqlDB.Exec("PRAGMA synchronous = NORMAL")
	sqlDB.Exec("PRAGMA busy_timeout = 5000")

	db := &DB{db: sqlDB}
	if err := db.RunMigrations(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// SaveComments replaces the snapshot of parentId. Temporary entries are
// skipped and optimistic flags are not persisted.
func (db *DB) SaveComments(parentId string, comments []domain.Comment) error {
	now := time.Now().UTC()
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(sqlDeleteParent, parentId); err != nil {
			return err
		}
		position := 0
		for _, c := range comments {
			if c.Id.IsTemporary() || c.IsOptimistic {
				continue
			}
			c.IsPending = false
			payload, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("failed to marshal comment %s: %w", c.Id, err)
			}
			if _, err := tx.Exec(sqlInsertComment, parentId, position, string(c.Id), string(payload), now); err != nil {
				return err
			}
			position++
		}
		return nil
	})
}

// LoadComments returns the saved snapshot of parentId in stored order
func (db *DB) LoadComments(parentId string) (error, *[]domain.Comment) {
	rows, err := db.db.Query(sqlSelectParent, parentId)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err, nil
		}
		c, err := decodeComment(payload)
		if err != nil {
			log.Printf("Skipping corrupt backup entry for %s: %v", parentId, err)
			continue
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return err, nil
	}
	return nil, &comments
}

// LoadAll returns every saved snapshot keyed by parent id
func (db *DB) LoadAll() (error, map[string][]domain.Comment) {
	rows, err := db.db.Query(sqlSelectAll)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	all := make(map[string][]domain.Comment)
	for rows.Next() {
		var parentId, payload string
		if err := rows.Scan(&parentId, &payload); err != nil {
			return err, nil
		}
		c, err := decodeComment(payload)
		if err != nil {
			log.Printf("Skipping corrupt backup entry for %s: %v", parentId, err)
			continue
		}
		all[parentId] = append(all[parentId], c)
	}
	if err := rows.Err(); err != nil {
		return err, nil
	}
	return nil, all
}

func (db *DB) DeleteComments(parentId string) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteParent, parentId)
		return err
	})
}

// PruneBefore drops snapshots saved before cutoff and returns how many rows
// went away.
func (db *DB) PruneBefore(cutoff time.Time) (int64, error) {
	var removed int64
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(sqlDeleteBefore, cutoff.UTC())
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

// CountParents reports how many parents have a saved snapshot
func (db *DB) CountParents() (int, error) {
	var n int
	err := db.db.QueryRow(sqlCountParents).Scan(&n)
	return n, err
}

func decodeComment(payload string) (domain.Comment, error) {
	var c domain.Comment
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return domain.Comment{}, err
	}
	c.IsOptimistic = false
	c.IsPending = false
	return c, nil
}

func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error starting transaction: %s", err)
		return err
	}
	for {
		err = f(tx)
		if err != nil {
			serr, ok := err.(*sqlite.Error)
			if ok && serr.Code() == sqlitelib.SQLITE_BUSY {
				continue
			}
			log.Printf("error in transaction: %s", err)
			tx.Rollback()
			return err
		}
		err = tx.Commit()
		if err != nil {
			log.Printf("error committing transaction: %s", err)
			return err
		}
		break
	}
	return nil
}
