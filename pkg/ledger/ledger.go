package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record describes one uploaded partition.
type Record struct {
	ID         string    `json:"id" bson:"_id"`
	Title      string    `json:"title" bson:"title"`
	Part       int       `json:"part" bson:"part"` // 1-based; 0 when the document was not split
	Pages      int       `json:"pages" bson:"pages"`
	Bytes      int64     `json:"bytes" bson:"bytes"` // archive size
	EditURL    string    `json:"edit_url" bson:"edit_url"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// NewRecord returns a record with a fresh id stamped with the current time.
func NewRecord(title string, part, pages int, bytes int64, editURL string) Record {
	return Record{
		ID:         uuid.NewString(),
		Title:      title,
		Part:       part,
		Pages:      pages,
		Bytes:      bytes,
		EditURL:    editURL,
		UploadedAt: time.Now().UTC(),
	}
}

// Store persists records. Implementations are safe for concurrent use.
type Store interface {
	// Add appends a record. A record without an id gets one.
	Add(ctx context.Context, rec Record) error

	// List returns up to limit records, newest first. A limit of 0 or less
	// returns everything.
	List(ctx context.Context, limit int) ([]Record, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

// Nop is a store that keeps nothing.
type Nop struct{}

func (Nop) Add(context.Context, Record) error           { return nil }
func (Nop) List(context.Context, int) ([]Record, error) { return nil, nil }
func (Nop) Close(context.Context) error                 { return nil }

var _ Store = Nop{}

func withID(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}
	return rec
}
