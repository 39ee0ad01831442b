// Package drive stores the task document as a single well-known file
// in the user's Google Drive (drive.file scope: only files this app
// created are visible).
package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DefaultFileName is the well-known remote file holding the document.
const DefaultFileName = "tasks_backup.json"

const mimeType = "application/json"

// Client wraps a Drive service bound to one remote file name.
type Client struct {
	srv      *drive.Service
	fileName string
}

// NewClient builds a Drive client from a per-user token source (the
// credential blob carried in the web session, passed through
// unmodified).
func NewClient(ctx context.Context, ts oauth2.TokenSource, fileName string) (*Client, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{srv: srv, fileName: fileName}, nil
}

// Find looks up the remote file by its well-known name. A missing file
// is not an error: the returned id is empty.
func (c *Client) Find(ctx context.Context) (string, time.Time, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false",
		strings.ReplaceAll(c.fileName, "'", `\'`))
	list, err := c.srv.Files.List().
		Context(ctx).
		Q(query).
		Spaces("drive").
		Fields("files(id, name, modifiedTime)").
		Do()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("list drive files: %w", err)
	}
	if len(list.Files) == 0 {
		return "", time.Time{}, nil
	}

	f := list.Files[0]
	modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		modified = time.Time{}
	}
	return f.Id, modified, nil
}

// Download fetches the remote document content.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.srv.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read drive file %s: %w", id, err)
	}
	return data, nil
}

// Upload sends the full document, updating the existing remote file in
// place when one exists and creating it otherwise. The remote side has
// the same whole-file overwrite semantics as the local store.
func (c *Client) Upload(ctx context.Context, content []byte) (string, error) {
	id, _, err := c.Find(ctx)
	if err != nil {
		return "", err
	}

	if id != "" {
		_, err := c.srv.Files.Update(id, &drive.File{}).
			Context(ctx).
			Media(bytes.NewReader(content)).
			Do()
		if err != nil {
			return "", fmt.Errorf("update drive file %s: %w", id, err)
		}
		return id, nil
	}

	created, err := c.srv.Files.Create(&drive.File{Name: c.fileName, MimeType: mimeType}).
		Context(ctx).
		Media(bytes.NewReader(content)).
		Fields("id").
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive file: %w", err)
	}
	return created.Id, nil
}
