package store

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	ActionAdd    = "add"
	ActionUpdate = "update"
	ActionDelete = "delete"

	StatusLogged = "logged"
	StatusFailed = "failed"

	// fixed width so created_at sorts lexically
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Operation is one attempted write to the board.
type Operation struct {
	ID        int64
	Action    string
	ItemID    string
	Date      string
	Activity  int
	Customer  string
	WorkItem  string
	Hours     float64
	Comment   string
	Status    string
	Error     string
	CreatedAt time.Time
}

func (db *DB) RecordOperation(op *Operation) (int64, error) {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	if op.Status == "" {
		op.Status = StatusLogged
	}
	result, err := db.Exec(
		`INSERT INTO operations (action, item_id, date, activity, customer, work_item, hours, comment, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.Action, op.ItemID, op.Date, op.Activity, op.Customer, op.WorkItem, op.Hours,
		op.Comment, op.Status, op.Error,
		op.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("recording operation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	op.ID = id
	return id, nil
}

// RecentOperations returns up to limit operations, newest first.
func (db *DB) RecentOperations(limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryOperations(
		`SELECT id, action, item_id, date, activity, customer, work_item, hours, comment, status, error, created_at
		 FROM operations
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// FailedOperations returns failed writes, oldest first.
func (db *DB) FailedOperations() ([]Operation, error) {
	return db.queryOperations(
		`SELECT id, action, item_id, date, activity, customer, work_item, hours, comment, status, error, created_at
		 FROM operations
		 WHERE status = 'failed'
		 ORDER BY created_at ASC, id ASC`,
	)
}

func (db *DB) queryOperations(query string, args ...any) ([]Operation, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var itemID, comment, errText sql.NullString
		var createdStr string

		if err := rows.Scan(
			&op.ID, &op.Action, &itemID, &op.Date, &op.Activity, &op.Customer, &op.WorkItem,
			&op.Hours, &comment, &op.Status, &errText, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}

		op.ItemID = itemID.String
		op.Comment = comment.String
		op.Error = errText.String
		if t, err := time.Parse(timeLayout, createdStr); err == nil {
			op.CreatedAt = t
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}
