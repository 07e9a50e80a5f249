package intake

import (
	"strings"
	"testing"
	"time"
)

func TestProvenanceRoundTrip(t *testing.T) {
	submitted := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	payload, err := Provenance{
		Source:      SourceIAWebhook,
		SubmittedAt: submitted,
		Contact: ProvenanceContact{
			Name:  "Maria Souza",
			Phone: "11987654321",
			CPF:   "12345678901",
		},
	}.MarshalPayload()
	if err != nil {
		t.Fatalf("MarshalPayload failed: %v", err)
	}

	p, err := ParseProvenance(payload)
	if err != nil {
		t.Fatalf("ParseProvenance failed: %v", err)
	}
	if p.SchemaVersion != ProvenanceSchemaVersion {
		t.Errorf("schema version = %d, want %d", p.SchemaVersion, ProvenanceSchemaVersion)
	}
	if p.Source != SourceIAWebhook {
		t.Errorf("source = %q, want %q", p.Source, SourceIAWebhook)
	}
	if !p.SubmittedAt.Equal(submitted) {
		t.Errorf("submitted_at = %v, want %v", p.SubmittedAt, submitted)
	}
	if p.Contact.Phone != "11987654321" {
		t.Errorf("contact phone = %q", p.Contact.Phone)
	}
}

func TestParseProvenanceRejectsUnknownVersion(t *testing.T) {
	_, err := ParseProvenance([]byte(`{"schema_version":2,"source":"web_portal"}`))
	if err == nil {
		t.Fatal("expected error for unknown schema version")
	}
	if !strings.Contains(err.Error(), "schema version") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseProvenanceRejectsMalformed(t *testing.T) {
	if _, err := ParseProvenance([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
