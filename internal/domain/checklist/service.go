package checklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrFinalized is returned when a non-privileged editor tries to change a
// record that has been signed off as complete.
var ErrFinalized = errors.New("checklist has been finalized")

// Summary is one list/search response row: header fields decorated with
// the derived status.
type Summary struct {
	ID            uuid.UUID  `json:"id"`
	HN            string     `json:"hn"`
	PatientName   string     `json:"patient_name"`
	Ward          string     `json:"ward"`
	Bed           string     `json:"bed"`
	Operation     string     `json:"operation"`
	OperationDate *time.Time `json:"operation_date,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Status        Status     `json:"status"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, rec *Record, ed Editor) error {
	if rec.HN == "" {
		return fmt.Errorf("hn is required")
	}
	if rec.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if rec.Result.Complete && rec.Result.NotComplete {
		return fmt.Errorf("result complete and not_complete are mutually exclusive")
	}
	rec.EnsureSections()
	rec.CreatedBy = ed.ID
	return s.repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// GetWithLocks loads a record and evaluates the lock state of every
// editable field for the given editor, using the stored record as the
// baseline snapshot for the editing session that starts with this load.
func (s *Service) GetWithLocks(ctx context.Context, id uuid.UUID, ed Editor, privileged bool) (*Record, map[string]bool, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return rec, LockMap(rec, ed, privileged), nil
}

var headerFields = []string{
	"hn", "patient_name", "age", "ward", "bed", "diagnosis", "operation", "operation_date",
}

var sectionNames = []string{
	"consent", "npo", "lab", "valuables", "iv_fluid", "medication",
}

var resultFields = []string{
	"complete", "not_complete", "checker", "check_time", "check_date",
}

// LockMap evaluates every editable field of the baseline for the editor.
// Keys are dotted field paths; absent keys mean unlocked (fields the
// baseline does not carry are open by the permissive default).
func LockMap(baseline *Record, ed Editor, privileged bool) map[string]bool {
	finalized := baseline.Finalized()
	locks := make(map[string]bool)

	for _, name := range headerFields {
		locks[name] = IsLocked(baseline, ed, privileged, finalized, RecordField{Name: name})
	}
	for _, key := range RowKeys {
		locks["rows."+key] = IsLocked(baseline, ed, privileged, finalized, RowField{Row: key})
	}
	for _, section := range sectionNames {
		for field := range baseline.Section(section) {
			locks[section+"."+field] = IsLocked(baseline, ed, privileged, finalized,
				SectionField{Section: section, Field: field})
		}
	}
	for _, name := range resultFields {
		locks["result."+name] = IsLocked(baseline, ed, privileged, finalized, ResultField{Name: name})
	}
	return locks
}

// Update persists a full-record replacement, last write wins. The only
// server-side lock enforced here is the record-level finalized guard;
// per-field locks are evaluated at load time for presentation.
func (s *Service) Update(ctx context.Context, rec *Record, ed Editor, privileged bool) error {
	if rec.HN == "" {
		return fmt.Errorf("hn is required")
	}
	if rec.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if rec.Result.Complete && rec.Result.NotComplete {
		return fmt.Errorf("result complete and not_complete are mutually exclusive")
	}

	existing, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing.Finalized() && !privileged {
		return ErrFinalized
	}
	rec.EnsureSections()
	rec.CreatedBy = existing.CreatedBy
	rec.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, rec)
}

// Finalize signs the record off as complete, stamping the checker
// identity and time. Finalizing an already finalized record is rejected
// for non-privileged editors by the same guard as any other write.
func (s *Service) Finalize(ctx context.Context, id uuid.UUID, ed Editor, privileged bool) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Finalized() && !privileged {
		return nil, ErrFinalized
	}

	now := time.Now()
	rec.Result.Complete = true
	rec.Result.NotComplete = false
	rec.Result.Checker = ed.Name
	rec.Result.CheckerID = ed.ID
	rec.Result.CheckTime = now.Format("15:04")
	rec.Result.CheckDate = now.Format("2006-01-02")

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Search returns summary rows matching the given parameters, each
// decorated with the status derived from its stored sub-documents.
func (s *Service) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Summary, int, error) {
	digests, total, err := s.repo.Search(ctx, params, sort, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return summarize(digests), total, nil
}

// List returns summary rows in default order, decorated like Search.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Summary, int, error) {
	digests, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return summarize(digests), total, nil
}

func summarize(digests []*Digest) []*Summary {
	items := make([]*Summary, 0, len(digests))
	for _, d := range digests {
		items = append(items, &Summary{
			ID:            d.ID,
			HN:            d.HN,
			PatientName:   d.PatientName,
			Ward:          d.Ward,
			Bed:           d.Bed,
			Operation:     d.Operation,
			OperationDate: d.OperationDate,
			UpdatedAt:     d.UpdatedAt,
			Status:        Classify(d.RowsJSON, d.ConsentJSON, d.NPOJSON, d.LabJSON, d.ResultJSON),
		})
	}
	return items
}
