package call

import "strings"

// Draft is the partially filled booking record accumulated across turns.
type Draft struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
}

// draftFieldNames is the fixed order in which missing fields are asked for.
var draftFieldNames = []string{"name", "email", "phone", "service name"}

// Merge overlays extracted onto prior. Only non-empty extracted values
// overwrite; applying the same extraction twice yields the same result.
func Merge(prior, extracted Draft) Draft {
	merged := prior
	if v := strings.TrimSpace(extracted.Name); v != "" {
		merged.Name = v
	}
	if v := strings.TrimSpace(extracted.Email); v != "" {
		merged.Email = v
	}
	if v := strings.TrimSpace(extracted.Phone); v != "" {
		merged.Phone = v
	}
	if v := strings.TrimSpace(extracted.ServiceName); v != "" {
		merged.ServiceName = v
	}
	return merged
}

// IsComplete reports whether every booking field holds a non-blank value.
func (d Draft) IsComplete() bool {
	return len(d.Missing()) == 0
}

// Missing lists the human-readable names of unfilled fields in fixed order.
func (d Draft) Missing() []string {
	values := []string{d.Name, d.Email, d.Phone, d.ServiceName}
	var missing []string
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, draftFieldNames[i])
		}
	}
	return missing
}
