package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// Specialty labels technicians register under. Stored lowercase; matching
// is case-insensitive everywhere.
const (
	SpecialtyWater       = "water"
	SpecialtyElectricity = "electricity"
	SpecialtyCleaning    = "cleaning"
	SpecialtyOthers      = "others"
)

// ReportClassification is the derived triage outcome for a submitted report.
type ReportClassification struct {
	Priority       domain.IssuePriority
	TechnicianType string
}

// ClassifyReport derives priority and target specialty from the structured
// condition data of a report. Used when the submitter supplies neither.
func ClassifyReport(condition string, form map[string]any) ReportClassification {
	power := strings.ToLower(formString(form, "powerSupply"))
	water := formString(form, "waterSupply")
	projector := strings.ToLower(formString(form, "projector"))
	ac := strings.ToLower(formString(form, "ac"))
	whiteboard := strings.ToLower(formString(form, "whiteboard"))
	if whiteboard == "" {
		whiteboard = strings.ToLower(formString(form, "whiteboards"))
	}

	switch {
	case strings.Contains(power, "water") || water != "":
		return ReportClassification{domain.IssuePriorityHigh, SpecialtyWater}
	case projector == "not working" || projector == "not_working":
		return ReportClassification{domain.IssuePriorityHigh, SpecialtyElectricity}
	case strings.Contains(power, "outage") || ac == "not working":
		return ReportClassification{domain.IssuePriorityHigh, SpecialtyElectricity}
	case whiteboard == "poor" || strings.EqualFold(strings.TrimSpace(condition), "poor"):
		return ReportClassification{domain.IssuePriorityMedium, SpecialtyCleaning}
	default:
		return ReportClassification{domain.IssuePriorityLow, SpecialtyOthers}
	}
}

func formString(form map[string]any, key string) string {
	if form == nil {
		return ""
	}
	val, ok := form[key]
	if !ok || val == nil {
		return ""
	}
	switch typed := val.(type) {
	case string:
		return strings.TrimSpace(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
