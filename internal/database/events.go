package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types written to the journal. They double as the websocket message
// event_type values.
const (
	EventResumeUploaded = "resume_uploaded"
	EventResumeAnalyzed = "resume_analyzed"
	EventResumeEnhanced = "resume_enhanced"
	EventJobMatchAdded  = "job_match_added"
	EventResumeDeleted  = "resume_deleted"
	EventResumeRenamed  = "resume_renamed"
)

type Event struct {
	ID        int64           `json:"id"`
	ResumeID  *string         `json:"resume_id,omitempty"`
	EventType string          `json:"event_type"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload"`
}

func (q *Queries) LogEvent(ctx context.Context, userID int64, resumeID *string, eventType string, payload interface{}) error {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `INSERT INTO event_journal (user_id, resume_id, event_type, payload) VALUES ($1, $2, $3, $4)`
	_, err = q.db.Exec(ctx, query, userID, resumeID, eventType, eventBytes)
	return err
}

func (q *Queries) GetEventsSince(ctx context.Context, userID int64, sinceID int64) ([]Event, error) {
	query := `
		SELECT id, resume_id, event_type, event_time, payload
		FROM event_journal
		WHERE user_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT 100
	`
	rows, err := q.db.Query(ctx, query, userID, sinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		err := rows.Scan(
			&event.ID,
			&event.ResumeID,
			&event.EventType,
			&event.EventTime,
			&event.Payload,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		return []Event{}, nil
	}
	return events, nil
}

// GetResumeHistory returns the journal entries for one record, newest first.
// Ownership is enforced by the user_id predicate, same as every other lookup.
func (q *Queries) GetResumeHistory(ctx context.Context, userID int64, resumeID string, limit int) ([]Event, error) {
	query := `
		SELECT id, resume_id, event_type, event_time, payload
		FROM event_journal
		WHERE user_id = $1 AND resume_id = $2
		ORDER BY id DESC
		LIMIT $3
	`
	rows, err := q.db.Query(ctx, query, userID, resumeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.ResumeID, &event.EventType, &event.EventTime, &event.Payload); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		return []Event{}, nil
	}
	return events, nil
}
