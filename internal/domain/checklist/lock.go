package checklist

import "strings"

// Editor identifies the staff member attempting an edit. ID is the stable
// user identifier; Name is the display name recorded on claimed rows.
// Records predating identifier capture carry only names, so both are kept.
type Editor struct {
	ID   string
	Name string
}

// Target names a single editable field of a record. The four kinds cover
// every editable surface: record-level header fields, checklist rows,
// sub-section leaves, and the finalization block.
type Target interface {
	target()
}

// RecordField is a record-level header field such as hn or patient_name.
type RecordField struct {
	Name string
}

// RowField is a sub-field of one checklist row (yes, no, time, preparer).
type RowField struct {
	Row   string
	Field string
}

// SectionField is a leaf inside a named sub-section.
type SectionField struct {
	Section string
	Field   string
}

// ResultField is a field of the finalization block.
type ResultField struct {
	Name string
}

func (RecordField) target()  {}
func (RowField) target()     {}
func (SectionField) target() {}
func (ResultField) target()  {}

// IsLocked decides whether the given target is closed to the editor,
// judged against the baseline snapshot taken when the editing session
// began. The baseline is never mutated and a missing or nil baseline
// reads as empty, which unlocks everything not otherwise guarded.
//
// Privileged editors are never locked. A finalized record is read-only
// for everyone else. Beyond that the rule is "first fill wins": a header,
// section, or result field locks once the baseline holds a value, and a
// claimed row stays editable only for its original claimant, matched by
// stable id when both sides have one, else by normalized name.
func IsLocked(baseline *Record, ed Editor, privileged, finalized bool, t Target) bool {
	if privileged {
		return false
	}
	if finalized {
		return true
	}

	switch target := t.(type) {
	case RecordField:
		return baseline.HeaderValue(target.Name) != ""

	case RowField:
		var row ChecklistRow
		if baseline != nil {
			row = baseline.Rows[target.Row]
		}
		if !row.Claimed() {
			return false
		}
		if row.PreparerID != "" && ed.ID != "" {
			return row.PreparerID != ed.ID
		}
		return !sameName(row.Preparer, ed.Name)

	case SectionField:
		return truthy(baseline.Section(target.Section)[target.Field])

	case ResultField:
		return truthy(baseline.ResultValue(target.Name))

	default:
		return false
	}
}

// sameName compares preparer names after trimming and case-folding. An
// empty editor name never matches a claimed row.
func sameName(claimed, editor string) bool {
	claimed = strings.TrimSpace(claimed)
	editor = strings.TrimSpace(editor)
	if editor == "" {
		return false
	}
	return strings.EqualFold(claimed, editor)
}
