// Package sync reconciles the local task document with its remote
// copy. Direction is decided by last_sync timestamps; records are
// union-merged per id with last-writer-wins on updated_at.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harrisonrobin/quadrant/pkg/model"
)

// Status reports what a sync run did.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusMerged   Status = "merged"
	StatusUpToDate Status = "up to date"
)

// Result is the outcome of one Sync call.
type Result struct {
	Status  Status
	FileID  string
	Changed bool
}

// Remote is the storage collaborator keyed by a well-known file name.
// *drive.Client satisfies it. Find returns an empty id when no remote
// file exists.
type Remote interface {
	Find(ctx context.Context) (id string, modified time.Time, err error)
	Download(ctx context.Context, id string) ([]byte, error)
	Upload(ctx context.Context, content []byte) (id string, err error)
}

// Store is the slice of the task store the engine needs. The engine
// never writes the backing file itself; Replace is the store's own
// persistence path.
type Store interface {
	Document() model.Document
	Replace(model.Document) error
}

// Syncer reconciles one store against one remote file.
type Syncer struct {
	store  Store
	remote Remote
}

// New builds a Syncer.
func New(store Store, remote Remote) *Syncer {
	return &Syncer{store: store, remote: remote}
}

// Sync runs one reconciliation pass. Any collaborator failure or a
// malformed remote payload propagates as an error before any local
// mutation: the in-memory replace+persist is the final step of the
// merge path.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	id, _, err := s.remote.Find(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("sync: find remote file: %w", err)
	}

	local := s.store.Document()

	if id == "" {
		fileID, err := s.upload(ctx, local)
		if err != nil {
			return Result{}, err
		}
		slog.Info("sync: no remote copy, uploaded local document", "file_id", fileID)
		return Result{Status: StatusUploaded, FileID: fileID}, nil
	}

	data, err := s.remote.Download(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("sync: download remote file: %w", err)
	}
	remoteDoc, err := model.DecodeDocument(data)
	if err != nil {
		return Result{}, fmt.Errorf("sync: remote payload: %w", err)
	}

	switch direction(local.LastSync, remoteDoc.LastSync) {
	case localWins:
		fileID, err := s.upload(ctx, local)
		if err != nil {
			return Result{}, err
		}
		slog.Info("sync: local is newer, uploaded", "file_id", fileID)
		return Result{Status: StatusUploaded, FileID: fileID}, nil

	case remoteWins:
		changed, err := s.merge(remoteDoc)
		if err != nil {
			return Result{}, err
		}
		slog.Info("sync: remote is newer, merged", "file_id", id, "changed", changed)
		return Result{Status: StatusMerged, FileID: id, Changed: changed}, nil

	default:
		return Result{Status: StatusUpToDate, FileID: id}, nil
	}
}

type syncDirection int

const (
	neither syncDirection = iota
	localWins
	remoteWins
)

// direction picks the authoritative side. A missing remote stamp means
// the local document rules; a missing local stamp defers to the
// remote; equal stamps mean nothing to do.
func direction(local, remote *time.Time) syncDirection {
	switch {
	case remote == nil:
		return localWins
	case local == nil:
		return remoteWins
	case local.After(*remote):
		return localWins
	case remote.After(*local):
		return remoteWins
	default:
		return neither
	}
}

func (s *Syncer) upload(ctx context.Context, doc model.Document) (string, error) {
	data, err := doc.Encode()
	if err != nil {
		return "", fmt.Errorf("sync: encode local document: %w", err)
	}
	id, err := s.remote.Upload(ctx, data)
	if err != nil {
		return "", fmt.Errorf("sync: upload: %w", err)
	}
	return id, nil
}

// merge folds the remote document into the local collection: per-id
// union, strictly later updated_at wins, remote wins exact ties. The
// local collection is replaced and persisted only when the union
// actually differs. Reports whether a change occurred.
func (s *Syncer) merge(remoteDoc model.Document) (bool, error) {
	local := s.store.Document()

	remoteByID := make(map[string]model.Task, len(remoteDoc.Tasks))
	for _, task := range remoteDoc.Tasks {
		remoteByID[task.ID] = task
	}
	localIDs := make(map[string]struct{}, len(local.Tasks))

	merged := make([]model.Task, 0, len(local.Tasks)+len(remoteDoc.Tasks))
	for _, task := range local.Tasks {
		localIDs[task.ID] = struct{}{}
		if remote, ok := remoteByID[task.ID]; ok {
			// Remote keeps ties: local survives only when strictly newer.
			if task.UpdatedAt.After(remote.UpdatedAt) {
				merged = append(merged, task)
			} else {
				merged = append(merged, remote)
			}
			continue
		}
		merged = append(merged, task)
	}
	for _, task := range remoteDoc.Tasks {
		if _, ok := localIDs[task.ID]; !ok {
			merged = append(merged, task)
		}
	}

	if tasksEqual(local.Tasks, merged) {
		return false, nil
	}
	if err := s.store.Replace(model.Document{Tasks: merged, LastSync: remoteDoc.LastSync}); err != nil {
		return true, fmt.Errorf("sync: persist merged document: %w", err)
	}
	return true, nil
}

func tasksEqual(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !taskEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func taskEqual(a, b model.Task) bool {
	return a.ID == b.ID &&
		a.Content == b.Content &&
		a.Completed == b.Completed &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt) &&
		a.UrgencyOrZero() == b.UrgencyOrZero() &&
		a.ImportanceOrZero() == b.ImportanceOrZero() &&
		a.Quadrant == b.Quadrant
}
