package formmodel

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/field"
	"github.com/goliatone/go-formflow/pkg/rules"
)

// ForSubmission reshapes the sanitised answers for the downstream system.
// Dates become ISO strings, date ranges are flattened into
// "<name>-start-date" and "<name>-end-date", fields with a Submission hook
// are replaced by what it returns, and the form hook gets the last word.
// The model's answers are never modified.
func (m *Model) ForSubmission() map[string]any {
	value := m.result.Value
	payload := make(map[string]any, len(value))

	for _, fd := range m.form.Fields() {
		raw, ok := value.Get(fd.Name)
		if !ok {
			continue
		}
		raw = answers.DeepCopy(raw)
		if fd.Submission != nil {
			for key, v := range fd.Submission(raw) {
				payload[key] = v
			}
			continue
		}
		switch fd.Type {
		case field.TypeDate:
			payload[fd.Name] = rules.FormatISO(raw)
		case field.TypeDateRange:
			parts, _ := raw.(map[string]any)
			payload[fd.Name+"-start-date"] = rules.FormatISO(parts["startDate"])
			payload[fd.Name+"-end-date"] = rules.FormatISO(parts["endDate"])
		default:
			payload[fd.Name] = raw
		}
	}

	if hook := m.form.SubmissionHook(); hook != nil {
		return hook(answers.Set(payload))
	}
	return payload
}

// Envelope is the payload plus the metadata a submission endpoint needs.
type Envelope struct {
	ApplicationID uuid.UUID      `json:"applicationId"`
	FormID        string         `json:"formId"`
	Environment   string         `json:"environment,omitempty"`
	Locale        string         `json:"locale"`
	StartedAt     time.Time      `json:"startedAt"`
	Payload       map[string]any `json:"payload"`
}

// SubmissionEnvelope wraps ForSubmission with the request context.
func (m *Model) SubmissionEnvelope() Envelope {
	return Envelope{
		ApplicationID: m.ctx.ApplicationID,
		FormID:        m.form.ID(),
		Environment:   m.ctx.Environment,
		Locale:        m.Locale(),
		StartedAt:     m.ctx.StartedAt,
		Payload:       m.ForSubmission(),
	}
}
