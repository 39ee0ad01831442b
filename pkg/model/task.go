// Package model defines the task record and the persisted document
// envelope shared by the store, the sync engine and the web layer.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harrisonrobin/quadrant/pkg/matrix"
)

// Task is a single to-do item. Urgency and Importance are pointers so
// an unclassified task is distinguishable from one scored at the
// defaults.
type Task struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Completed  bool            `json:"completed"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Urgency    *int            `json:"urgency,omitempty"`
	Importance *int            `json:"importance,omitempty"`
	Quadrant   matrix.Quadrant `json:"quadrant,omitempty"`
}

// UrgencyOrZero returns the urgency score, or 0 when unclassified.
func (t Task) UrgencyOrZero() int {
	if t.Urgency == nil {
		return 0
	}
	return *t.Urgency
}

// ImportanceOrZero returns the importance score, or 0 when unclassified.
func (t Task) ImportanceOrZero() int {
	if t.Importance == nil {
		return 0
	}
	return *t.Importance
}

// Document is the persisted unit: the full task collection plus the
// timestamp of the last save/sync. Task IDs are unique within Tasks;
// slice order carries no meaning.
type Document struct {
	Tasks    []Task     `json:"tasks"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// Clone returns a deep-enough copy: the slice is fresh, Task values are
// copied (score pointers are shared but treated as immutable).
func (d Document) Clone() Document {
	out := Document{LastSync: d.LastSync}
	if d.Tasks != nil {
		out.Tasks = make([]Task, len(d.Tasks))
		copy(out.Tasks, d.Tasks)
	}
	return out
}

// Encode renders the document as indented UTF-8 JSON, the shape written
// to the backing file and uploaded to remote storage.
func (d Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// DecodeDocument parses a stored document. Two shapes are accepted: the
// envelope {"tasks": [...], "last_sync": ...} and the legacy bare array
// of task objects, which is normalized into an envelope so downstream
// code only ever sees one shape.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	envErr := json.Unmarshal(data, &doc)
	if envErr == nil {
		if doc.Tasks == nil {
			doc.Tasks = []Task{}
		}
		return doc, nil
	}

	var legacy []Task
	if err := json.Unmarshal(data, &legacy); err == nil {
		return Document{Tasks: legacy}, nil
	}

	return Document{}, fmt.Errorf("decode task document: %w", envErr)
}
