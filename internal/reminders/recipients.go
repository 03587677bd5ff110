package reminders

import (
	"context"
	"strings"

	"github.com/dosewise/dosewise-platform/internal/notify"
)

// StaticResolver resolves digest recipients from a fixed patient->email map,
// configured via PATIENT_CONTACTS ("patientID=email" pairs). Stands in until
// patient profiles own contact details.
type StaticResolver struct {
	contacts map[string]string
}

// NewStaticResolver parses "patientID=email" entries. Malformed entries are
// skipped.
func NewStaticResolver(entries []string) *StaticResolver {
	contacts := make(map[string]string, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		contacts[parts[0]] = parts[1]
	}
	return &StaticResolver{contacts: contacts}
}

// Resolve returns the configured recipient, or an empty one when unknown.
func (r *StaticResolver) Resolve(_ context.Context, patientID string) (notify.Recipient, error) {
	if r == nil {
		return notify.Recipient{}, nil
	}
	return notify.Recipient{Email: r.contacts[patientID]}, nil
}

var _ RecipientResolver = (*StaticResolver)(nil)
