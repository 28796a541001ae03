package model

import "strings"

// StatusLabel renders a status value for display: "in_progress"
// becomes "In Progress". Derived only, never persisted.
func StatusLabel(status string) string {
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// statusClasses maps status values to the badge classes the frontend
// renders. Unknown statuses fall back to "secondary".
var statusClasses = map[string]string{
	"active":      "success",
	"inactive":    "secondary",
	"deleted":     "danger",
	"suspended":   "warning",
	"lead":        "info",
	"new":         "info",
	"in_progress": "primary",
	"completed":   "success",
	"cancelled":   "danger",
	"planned":     "info",
	"confirmed":   "primary",
	"no_show":     "warning",
}

// StatusClass returns the badge class for a status value.
func StatusClass(status string) string {
	if c, ok := statusClasses[status]; ok {
		return c
	}
	return "secondary"
}

// Initials derives up to two uppercase initials from a display name.
func Initials(name string) string {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(fields[0][:1])
	default:
		first := fields[0]
		last := fields[len(fields)-1]
		return strings.ToUpper(first[:1] + last[:1])
	}
}
