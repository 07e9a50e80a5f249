package intake

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProvenanceSchemaVersion is bumped whenever the payload shape changes, so
// triage tooling can handle each version explicitly instead of guessing at
// an open map.
const ProvenanceSchemaVersion = 1

// Known submission channels. Source is free-form on the wire; these are the
// values this service writes itself.
const (
	SourceWebPortal     = "web_portal"
	SourcePatientPortal = "patient_portal"
	SourceIAWebhook     = "ia_webhook"
)

// Provenance records how a booking request arrived: the channel, the moment
// of submission, and the normalized contact snapshot. It is stored on the
// appointment as its notes payload.
type Provenance struct {
	SchemaVersion int               `json:"schema_version"`
	Source        string            `json:"source"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	Contact       ProvenanceContact `json:"contact"`
	PatientID     string            `json:"patient_id,omitempty"`
}

type ProvenanceContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	CPF   string `json:"cpf,omitempty"`
	Email string `json:"email,omitempty"`
}

func (p Provenance) MarshalPayload() ([]byte, error) {
	p.SchemaVersion = ProvenanceSchemaVersion
	return json.Marshal(p)
}

// ParseProvenance decodes a stored notes payload. Unknown schema versions
// are rejected so consumers never misread a future shape.
func ParseProvenance(raw []byte) (Provenance, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Provenance{}, fmt.Errorf("malformed provenance payload: %w", err)
	}
	if probe.SchemaVersion != ProvenanceSchemaVersion {
		return Provenance{}, fmt.Errorf("unsupported provenance schema version %d", probe.SchemaVersion)
	}

	var p Provenance
	if err := json.Unmarshal(raw, &p); err != nil {
		return Provenance{}, fmt.Errorf("malformed provenance payload: %w", err)
	}
	return p, nil
}
