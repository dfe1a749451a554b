package checklist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Digest is a list/search projection of one record: the header columns
// plus the raw JSONB sub-documents the status classifier needs. Keeping
// the sub-documents as raw bytes lets classification run on exactly what
// the database stored.
type Digest struct {
	ID            uuid.UUID  `json:"id"`
	HN            string     `json:"hn"`
	PatientName   string     `json:"patient_name"`
	Ward          string     `json:"ward"`
	Bed           string     `json:"bed"`
	Operation     string     `json:"operation"`
	OperationDate *time.Time `json:"operation_date,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`

	RowsJSON    []byte `json:"-"`
	ConsentJSON []byte `json:"-"`
	NPOJSON     []byte `json:"-"`
	LabJSON     []byte `json:"-"`
	ResultJSON  []byte `json:"-"`
}

// Repository persists checklist records.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Digest, int, error)
	Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Digest, int, error)
}
