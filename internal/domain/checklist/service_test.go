package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	records map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) Create(_ context.Context, rec *Record) error {
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	m.records[rec.ID] = rec
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return rec, nil
}

func (m *mockRepo) Update(_ context.Context, rec *Record) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.records, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Digest, int, error) {
	var result []*Digest
	for _, rec := range m.records {
		result = append(result, digestOf(rec))
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, _ map[string]string, _ string, limit, offset int) ([]*Digest, int, error) {
	return m.List(context.Background(), limit, offset)
}

func digestOf(rec *Record) *Digest {
	rowsJSON, _ := json.Marshal(rec.Rows)
	consentJSON, _ := json.Marshal(rec.Consent)
	npoJSON, _ := json.Marshal(rec.NPO)
	labJSON, _ := json.Marshal(rec.Lab)
	resultJSON, _ := json.Marshal(rec.Result)
	return &Digest{
		ID:          rec.ID,
		HN:          rec.HN,
		PatientName: rec.PatientName,
		Ward:        rec.Ward,
		UpdatedAt:   rec.UpdatedAt,
		RowsJSON:    rowsJSON,
		ConsentJSON: consentJSON,
		NPOJSON:     npoJSON,
		LabJSON:     labJSON,
		ResultJSON:  resultJSON,
	}
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

// -- Tests --

func TestCreateChecklist(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P"}
	ed := Editor{ID: "u1", Name: "Nurse A"}
	if err := svc.Create(context.Background(), rec, ed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CreatedBy != "u1" {
		t.Errorf("expected created_by u1, got %s", rec.CreatedBy)
	}
	if rec.Rows == nil || rec.Consent == nil {
		t.Error("expected empty sub-documents to be initialized")
	}
}

func TestCreateChecklist_HNRequired(t *testing.T) {
	svc := newTestService()
	rec := &Record{PatientName: "Somchai P"}
	if err := svc.Create(context.Background(), rec, Editor{}); err == nil {
		t.Error("expected error for missing hn")
	}
}

func TestCreateChecklist_PatientNameRequired(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001"}
	if err := svc.Create(context.Background(), rec, Editor{}); err == nil {
		t.Error("expected error for missing patient_name")
	}
}

func TestCreateChecklist_ExclusiveResultFlags(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P",
		Result: ResultSection{Complete: true, NotComplete: true}}
	if err := svc.Create(context.Background(), rec, Editor{}); err == nil {
		t.Error("expected error for complete and not_complete both set")
	}
}

func TestUpdateChecklist(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P"}
	ed := Editor{ID: "u1", Name: "Nurse A"}
	svc.Create(context.Background(), rec, ed)

	upd := &Record{ID: rec.ID, HN: "HN001", PatientName: "Somchai P", Ward: "W5"}
	if err := svc.Update(context.Background(), upd, Editor{ID: "u2", Name: "Nurse B"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.CreatedBy != "u1" {
		t.Errorf("update should preserve created_by, got %s", upd.CreatedBy)
	}
	got, _ := svc.Get(context.Background(), rec.ID)
	if got.Ward != "W5" {
		t.Errorf("expected ward W5, got %s", got.Ward)
	}
}

func TestUpdateChecklist_LastWriteWins(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P"}
	svc.Create(context.Background(), rec, Editor{ID: "u1"})

	// Two editors loaded the same snapshot; the second write overwrites
	// the first at the record level.
	first := &Record{ID: rec.ID, HN: "HN001", PatientName: "Somchai P",
		Rows: Rows{"npo": {Yes: true, Preparer: "Nurse A", PreparerID: "u1"}}}
	second := &Record{ID: rec.ID, HN: "HN001", PatientName: "Somchai P",
		Rows: Rows{"npo": {Yes: true, Preparer: "Nurse B", PreparerID: "u2"}}}

	if err := svc.Update(context.Background(), first, Editor{ID: "u1"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Update(context.Background(), second, Editor{ID: "u2"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Get(context.Background(), rec.ID)
	if got.Rows["npo"].PreparerID != "u2" {
		t.Errorf("expected last write to win, got preparer %s", got.Rows["npo"].PreparerID)
	}
}

func TestUpdateChecklist_FinalizedGuard(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P",
		Rows: Rows{"consent": {Yes: true}}}
	svc.Create(context.Background(), rec, Editor{ID: "u1"})
	if _, err := svc.Finalize(context.Background(), rec.ID, Editor{ID: "u1", Name: "Nurse A"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	upd := &Record{ID: rec.ID, HN: "HN001", PatientName: "Changed"}
	err := svc.Update(context.Background(), upd, Editor{ID: "u2", Name: "Nurse B"}, false)
	if err != ErrFinalized {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}

	// A privileged editor may still write.
	if err := svc.Update(context.Background(), upd, Editor{ID: "admin"}, true); err != nil {
		t.Fatalf("privileged update rejected: %v", err)
	}
}

func TestFinalizeChecklist(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P"}
	svc.Create(context.Background(), rec, Editor{ID: "u1"})

	got, err := svc.Finalize(context.Background(), rec.ID, Editor{ID: "u1", Name: "Nurse A"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Result.Complete || got.Result.NotComplete {
		t.Error("finalize should set complete and clear not_complete")
	}
	if got.Result.Checker != "Nurse A" || got.Result.CheckerID != "u1" {
		t.Errorf("checker identity not stamped: %+v", got.Result)
	}
	if got.Result.CheckDate == "" || got.Result.CheckTime == "" {
		t.Error("check date/time not stamped")
	}

	// Finalizing again without privilege hits the same guard.
	if _, err := svc.Finalize(context.Background(), rec.ID, Editor{ID: "u2"}, false); err != ErrFinalized {
		t.Errorf("expected ErrFinalized on re-finalize, got %v", err)
	}
}

func TestSearchDecoratesStatus(t *testing.T) {
	svc := newTestService()

	empty := &Record{HN: "HN001", PatientName: "A"}
	svc.Create(context.Background(), empty, Editor{})

	started := &Record{HN: "HN002", PatientName: "B",
		Rows: Rows{"blood": {Yes: true, Preparer: "Nurse A"}}}
	svc.Create(context.Background(), started, Editor{})

	done := &Record{HN: "HN003", PatientName: "C",
		Rows:   Rows{"consent": {Yes: true, Preparer: "Nurse A"}},
		Result: ResultSection{Complete: true}}
	svc.Create(context.Background(), done, Editor{})

	items, total, err := svc.Search(context.Background(), nil, "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 records, got %d", total)
	}
	byHN := map[string]Status{}
	for _, it := range items {
		byHN[it.HN] = it.Status
	}
	if byHN["HN001"].Tag != StatusRed {
		t.Errorf("empty record should be red, got %+v", byHN["HN001"])
	}
	if byHN["HN002"].Tag != StatusYellow {
		t.Errorf("started record should be yellow, got %+v", byHN["HN002"])
	}
	if byHN["HN003"].Tag != StatusGreen {
		t.Errorf("finalized record should be green, got %+v", byHN["HN003"])
	}
}

func TestGetWithLocks(t *testing.T) {
	svc := newTestService()
	rec := &Record{
		HN: "HN001", PatientName: "Somchai P",
		Rows:    Rows{"consent": {Yes: true, Preparer: "Nurse A", PreparerID: "u1"}},
		Consent: SectionValues{"physician": "Dr. C"},
	}
	svc.Create(context.Background(), rec, Editor{ID: "u1"})

	_, locks, err := svc.GetWithLocks(context.Background(), rec.ID, Editor{ID: "u2", Name: "Nurse B"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locks["hn"] {
		t.Error("filled hn should be locked for another editor")
	}
	if locks["ward"] {
		t.Error("empty ward should be unlocked")
	}
	if !locks["rows.consent"] {
		t.Error("row claimed by u1 should be locked for u2")
	}
	if locks["rows.npo"] {
		t.Error("unclaimed row should be unlocked")
	}
	if !locks["consent.physician"] {
		t.Error("filled section field should be locked")
	}
	if locks["result.complete"] {
		t.Error("unset result flag should be unlocked")
	}

	// The owner sees their own row open.
	_, ownerLocks, err := svc.GetWithLocks(context.Background(), rec.ID, Editor{ID: "u1", Name: "Nurse A"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ownerLocks["rows.consent"] {
		t.Error("claimant should keep editing their own row")
	}

	// A privileged editor sees everything open.
	_, adminLocks, err := svc.GetWithLocks(context.Background(), rec.ID, Editor{ID: "x"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for key, locked := range adminLocks {
		if locked {
			t.Errorf("privileged editor locked out of %s", key)
		}
	}
}

func TestDeleteChecklist(t *testing.T) {
	svc := newTestService()
	rec := &Record{HN: "HN001", PatientName: "Somchai P"}
	svc.Create(context.Background(), rec, Editor{})

	if err := svc.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), rec.ID); err == nil {
		t.Error("expected error after deletion")
	}
}
