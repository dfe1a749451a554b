package checklist

import (
	"strings"
	"testing"
)

func classifyStrings(rows, consent, npo, lab, result string) Status {
	return Classify([]byte(rows), []byte(consent), []byte(npo), []byte(lab), []byte(result))
}

func TestClassifyNotStarted(t *testing.T) {
	st := classifyStrings(
		`{"consent":{"yes":false,"no":false,"time":"","preparer":""}}`,
		`{}`, `{}`, `{}`, `{}`)
	if st.Tag != StatusRed {
		t.Fatalf("expected red, got %s", st.Tag)
	}
	if st.Message != "Not started" {
		t.Errorf("unexpected message %q", st.Message)
	}
}

func TestClassifyEmptyDocuments(t *testing.T) {
	st := Classify(nil, nil, nil, nil, nil)
	if st.Tag != StatusRed || st.Message != "Not started" {
		t.Errorf("empty documents should be red/not started, got %+v", st)
	}
}

func TestClassifyNoActivityIgnoresOtherFlags(t *testing.T) {
	// complete=true with zero row activity still reads as not started.
	st := classifyStrings(`{}`, `{"physician":"Dr. C"}`, `{"confirmed":true}`, `{"complete":true}`,
		`{"complete":true,"checker":"Nurse A"}`)
	if st.Tag != StatusRed || st.Message != "Not started" {
		t.Errorf("no-activity record should be red regardless of flags, got %+v", st)
	}
}

func TestClassifyPendingItems(t *testing.T) {
	st := classifyStrings(
		`{"blood":{"yes":true}}`,
		`{}`, `{}`, `{}`, `{}`)
	if st.Tag != StatusYellow {
		t.Fatalf("expected yellow, got %s", st.Tag)
	}
	if !strings.Contains(st.Message, "Consent form") {
		t.Errorf("expected pending consent in %q", st.Message)
	}
	if !strings.Contains(st.Message, "NPO") {
		t.Errorf("expected pending NPO in %q", st.Message)
	}
	// Four predicates unmet but only three labels surface.
	if got := len(strings.Split(st.Message, ", ")); got != 3 {
		t.Errorf("expected 3 pending labels, got %d (%q)", got, st.Message)
	}
	if strings.Contains(st.Message, "Attending physician") {
		t.Errorf("fourth label should be capped away, got %q", st.Message)
	}
}

func TestClassifyConsentCoversNPO(t *testing.T) {
	st := classifyStrings(
		`{"consent":{"yes":true,"preparer":"Nurse A"}}`,
		`{"physician":"Dr. C"}`, `{}`, `{"complete":true}`, `{}`)
	if st.Tag != StatusYellow {
		t.Fatalf("expected yellow, got %s", st.Tag)
	}
	if st.Message != "In progress" {
		t.Errorf("all predicates met should read in progress, got %q", st.Message)
	}
}

func TestClassifyLabRowSatisfiesLab(t *testing.T) {
	st := classifyStrings(
		`{"consent":{"yes":true},"lab":{"yes":true}}`,
		`{"physician":"Dr. C"}`, `{}`, `{}`, `{}`)
	if strings.Contains(st.Message, "Lab results") {
		t.Errorf("affirmed lab row should satisfy the lab predicate, got %q", st.Message)
	}
}

func TestClassifyFinalizeOverridesPending(t *testing.T) {
	st := classifyStrings(
		`{"blood":{"yes":true}}`,
		`{}`, `{}`, `{}`,
		`{"complete":true,"checker":"Nurse A"}`)
	if st.Tag != StatusGreen {
		t.Fatalf("expected green, got %s", st.Tag)
	}
	if st.Message != "Ready" {
		t.Errorf("unexpected message %q", st.Message)
	}
}

func TestClassifyNotComplete(t *testing.T) {
	st := classifyStrings(
		`{"blood":{"yes":true}}`,
		`{}`, `{}`, `{}`,
		`{"not_complete":true,"checker":"Nurse A"}`)
	if st.Tag != StatusYellow {
		t.Fatalf("expected yellow, got %s", st.Tag)
	}
	if st.Message != "Reviewed - not ready" {
		t.Errorf("unexpected message %q", st.Message)
	}
}

func TestClassifyParseFailure(t *testing.T) {
	good := `{"blood":{"yes":true}}`
	bad := `{"oops":`
	cases := []struct {
		name                          string
		rows, consent, npo, lab, result string
	}{
		{"rows", bad, `{}`, `{}`, `{}`, `{}`},
		{"consent", good, bad, `{}`, `{}`, `{}`},
		{"npo", good, `{}`, bad, `{}`, `{}`},
		{"lab", good, `{}`, `{}`, bad, `{}`},
		{"result", good, `{}`, `{}`, `{}`, bad},
	}
	for _, tc := range cases {
		st := classifyStrings(tc.rows, tc.consent, tc.npo, tc.lab, tc.result)
		if st.Tag != StatusRed {
			t.Errorf("%s: malformed sub-document should be red, got %s", tc.name, st.Tag)
		}
		if st.Message != "Checklist data unreadable" {
			t.Errorf("%s: unexpected message %q", tc.name, st.Message)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	rows := `{"consent":{"yes":true},"npo":{"time":"07:30"}}`
	first := classifyStrings(rows, `{}`, `{"confirmed":true}`, `{}`, `{}`)
	second := classifyStrings(rows, `{}`, `{"confirmed":true}`, `{}`, `{}`)
	if first != second {
		t.Errorf("classification not reproducible: %+v vs %+v", first, second)
	}
}

func TestClassifyTimeOnlyActivity(t *testing.T) {
	st := classifyStrings(`{"npo":{"time":"06:00"}}`, `{}`, `{}`, `{}`, `{}`)
	if st.Tag != StatusRed && st.Tag != StatusYellow {
		t.Fatalf("unexpected tag %s", st.Tag)
	}
	if st.Tag != StatusYellow {
		t.Error("a recorded time alone should count as activity")
	}
}

func TestClassifyRecordMatchesRawClassification(t *testing.T) {
	rec := &Record{
		Rows:    Rows{"blood": {Yes: true}},
		Consent: SectionValues{},
		NPO:     SectionValues{},
		Lab:     SectionValues{},
		Result:  ResultSection{Complete: true},
	}
	st := ClassifyRecord(rec)
	if st.Tag != StatusGreen || st.Message != "Ready" {
		t.Errorf("expected green/Ready, got %+v", st)
	}
	if got := ClassifyRecord(nil); got.Tag != StatusRed {
		t.Errorf("nil record should be red, got %+v", got)
	}
}
