package checklist

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RowKeys is the fixed set of checklist line items. Every record carries
// exactly these rows; absent keys read as untouched rows.
var RowKeys = []string{
	"consent", "npo", "lab", "blood", "skin_prep",
	"valuables", "iv_line", "medication", "void", "documents",
}

// ChecklistRow is one line item of the preparation checklist. Yes and No
// are a tri-state pair (both false means unanswered); they are set
// together, never both true.
type ChecklistRow struct {
	Yes        bool   `json:"yes"`
	No         bool   `json:"no"`
	Time       string `json:"time"`
	Preparer   string `json:"preparer"`
	PreparerID string `json:"preparer_id,omitempty"`
}

// Claimed reports whether any staff member has taken ownership of the row.
func (r ChecklistRow) Claimed() bool {
	return strings.TrimSpace(r.Preparer) != ""
}

// Answered reports whether the row shows any activity: an answer either
// way or a recorded time.
func (r ChecklistRow) Answered() bool {
	return r.Yes || r.No || strings.TrimSpace(r.Time) != ""
}

// Rows holds the checklist line items keyed by row key.
type Rows map[string]ChecklistRow

// SectionValues holds the free-form leaf fields of one named sub-section
// (consent, npo, lab, valuables, iv_fluid, medication). Leaf shape is
// whatever the stored JSON carries, so values stay untyped.
type SectionValues map[string]any

// truthy reports whether a stored leaf value counts as "filled in".
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return strings.TrimSpace(val) != ""
	case float64:
		return val != 0
	case map[string]any:
		return len(val) > 0
	case []any:
		return len(val) > 0
	default:
		return true
	}
}

// ResultSection is the finalization block. Complete and NotComplete are
// mutually exclusive.
type ResultSection struct {
	Complete    bool   `json:"complete"`
	NotComplete bool   `json:"not_complete"`
	Checker     string `json:"checker"`
	CheckerID   string `json:"checker_id,omitempty"`
	CheckTime   string `json:"check_time"`
	CheckDate   string `json:"check_date"`
}

// Record maps to the preop_checklist table. Header fields are record-level
// and individually lockable; the sub-documents are stored as JSONB.
type Record struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	HN            string        `db:"hn" json:"hn"`
	PatientName   string        `db:"patient_name" json:"patient_name"`
	Age           string        `db:"age" json:"age"`
	Ward          string        `db:"ward" json:"ward"`
	Bed           string        `db:"bed" json:"bed"`
	Diagnosis     string        `db:"diagnosis" json:"diagnosis"`
	Operation     string        `db:"operation" json:"operation"`
	OperationDate *time.Time    `db:"operation_date" json:"operation_date,omitempty"`
	Rows          Rows          `db:"rows" json:"rows"`
	Consent       SectionValues `db:"consent" json:"consent"`
	NPO           SectionValues `db:"npo" json:"npo"`
	Lab           SectionValues `db:"lab" json:"lab"`
	Valuables     SectionValues `db:"valuables" json:"valuables"`
	IVFluid       SectionValues `db:"iv_fluid" json:"iv_fluid"`
	Medication    SectionValues `db:"medication" json:"medication"`
	Result        ResultSection `db:"result" json:"result"`
	CreatedBy     string        `db:"created_by" json:"created_by"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// Finalized reports whether the record has been signed off as complete.
func (rec *Record) Finalized() bool {
	if rec == nil {
		return false
	}
	return rec.Result.Complete
}

// HeaderValue returns the record-level header field by name, or "" for
// an unknown or unset field.
func (rec *Record) HeaderValue(name string) string {
	if rec == nil {
		return ""
	}
	switch name {
	case "hn":
		return rec.HN
	case "patient_name":
		return rec.PatientName
	case "age":
		return rec.Age
	case "ward":
		return rec.Ward
	case "bed":
		return rec.Bed
	case "diagnosis":
		return rec.Diagnosis
	case "operation":
		return rec.Operation
	case "operation_date":
		if rec.OperationDate == nil {
			return ""
		}
		return rec.OperationDate.Format("2006-01-02")
	default:
		return ""
	}
}

// Section returns the named sub-section, or nil for an unknown name.
func (rec *Record) Section(name string) SectionValues {
	if rec == nil {
		return nil
	}
	switch name {
	case "consent":
		return rec.Consent
	case "npo":
		return rec.NPO
	case "lab":
		return rec.Lab
	case "valuables":
		return rec.Valuables
	case "iv_fluid":
		return rec.IVFluid
	case "medication":
		return rec.Medication
	default:
		return nil
	}
}

// ResultValue returns the named finalization field, or nil for an
// unknown name.
func (rec *Record) ResultValue(name string) any {
	if rec == nil {
		return nil
	}
	switch name {
	case "complete":
		return rec.Result.Complete
	case "not_complete":
		return rec.Result.NotComplete
	case "checker":
		return rec.Result.Checker
	case "check_time":
		return rec.Result.CheckTime
	case "check_date":
		return rec.Result.CheckDate
	default:
		return nil
	}
}

// EnsureSections replaces nil sub-documents with empty ones so the stored
// JSONB columns never hold SQL NULL.
func (rec *Record) EnsureSections() {
	if rec.Rows == nil {
		rec.Rows = Rows{}
	}
	if rec.Consent == nil {
		rec.Consent = SectionValues{}
	}
	if rec.NPO == nil {
		rec.NPO = SectionValues{}
	}
	if rec.Lab == nil {
		rec.Lab = SectionValues{}
	}
	if rec.Valuables == nil {
		rec.Valuables = SectionValues{}
	}
	if rec.IVFluid == nil {
		rec.IVFluid = SectionValues{}
	}
	if rec.Medication == nil {
		rec.Medication = SectionValues{}
	}
}
