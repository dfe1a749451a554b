package checklist

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Status tags for the readiness indicator.
const (
	StatusRed    = "red"
	StatusYellow = "yellow"
	StatusGreen  = "green"
)

// Status is the derived readiness of one record: a three-state tag plus a
// human-readable reason shown on list and dashboard views.
type Status struct {
	Tag     string `json:"status"`
	Message string `json:"message"`
}

// Fixed status messages and pending-item labels.
const (
	msgNotStarted = "Not started"
	msgUnreadable = "Checklist data unreadable"
	msgReady      = "Ready"
	msgNotReady   = "Reviewed - not ready"
	msgInProgress = "In progress"

	labelConsent   = "Consent form"
	labelNPO       = "NPO"
	labelLab       = "Lab results"
	labelPhysician = "Attending physician"

	maxPendingLabels = 3
)

// Classify derives the readiness status from a record's stored JSON
// sub-documents. It is deterministic for a given input and never panics:
// an empty sub-document reads as an empty structure, an unreadable one
// collapses the whole record to red.
//
// With no row activity the record is red regardless of every other flag.
// With activity, an explicit complete sign-off wins over any unmet
// readiness predicate; otherwise the record is yellow with the unmet
// predicates (capped at three) as the message.
func Classify(rowsJSON, consentJSON, npoJSON, labJSON, resultJSON []byte) Status {
	var (
		rows    Rows
		consent SectionValues
		npo     SectionValues
		lab     SectionValues
		result  ResultSection
	)
	if !parseInto(rowsJSON, &rows) ||
		!parseInto(consentJSON, &consent) ||
		!parseInto(npoJSON, &npo) ||
		!parseInto(labJSON, &lab) ||
		!parseInto(resultJSON, &result) {
		return Status{Tag: StatusRed, Message: msgUnreadable}
	}

	hasActivity := false
	for _, row := range rows {
		if row.Answered() {
			hasActivity = true
			break
		}
	}
	if !hasActivity {
		return Status{Tag: StatusRed, Message: msgNotStarted}
	}

	consentOK := rows["consent"].Yes

	var pending []string
	if !consentOK {
		pending = append(pending, labelConsent)
	}
	if !truthy(npo["confirmed"]) && !consentOK {
		pending = append(pending, labelNPO)
	}
	if !truthy(lab["complete"]) && !rows["lab"].Yes {
		pending = append(pending, labelLab)
	}
	if !truthy(consent["physician"]) {
		pending = append(pending, labelPhysician)
	}
	if len(pending) > maxPendingLabels {
		pending = pending[:maxPendingLabels]
	}

	if result.Complete {
		return Status{Tag: StatusGreen, Message: msgReady}
	}
	if result.NotComplete {
		return Status{Tag: StatusYellow, Message: msgNotReady}
	}
	if len(pending) > 0 {
		return Status{Tag: StatusYellow, Message: strings.Join(pending, ", ")}
	}
	return Status{Tag: StatusYellow, Message: msgInProgress}
}

// ClassifyRecord classifies an in-memory record by re-encoding its
// sub-documents through the same path the stored JSON takes.
func ClassifyRecord(rec *Record) Status {
	if rec == nil {
		return Status{Tag: StatusRed, Message: msgNotStarted}
	}
	rowsJSON, _ := json.Marshal(rec.Rows)
	consentJSON, _ := json.Marshal(rec.Consent)
	npoJSON, _ := json.Marshal(rec.NPO)
	labJSON, _ := json.Marshal(rec.Lab)
	resultJSON, _ := json.Marshal(rec.Result)
	return Classify(rowsJSON, consentJSON, npoJSON, labJSON, resultJSON)
}

// parseInto unmarshals one stored sub-document. A nil or blank document
// counts as an empty structure; malformed JSON reports false.
func parseInto(raw []byte, v any) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}
