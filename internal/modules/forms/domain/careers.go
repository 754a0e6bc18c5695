package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"backofficeWs/internal/shared/validation"
)

var listSeparator = regexp.MustCompile(`\r?\n|,`)

// JobLocation is where a job is based.
type JobLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Remote  bool   `json:"remote"`
}

// NumericRange holds min/max as typed text; blank or non-numeric bounds are dropped.
type NumericRange struct {
	Min      string `json:"min"`
	Max      string `json:"max"`
	Currency string `json:"currency,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// Poster identifies who published a job.
type Poster struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

// JobDraft is the create/edit form of a career posting. ID is set when editing.
type JobDraft struct {
	ID                  string       `json:"id"`
	JobID               string       `json:"jobId"`
	JobTitle            string       `json:"jobTitle"`
	Department          string       `json:"department"`
	JobType             string       `json:"jobType"`
	Location            JobLocation  `json:"location"`
	SalaryRange         NumericRange `json:"salaryRange"`
	ExperienceRequired  NumericRange `json:"experienceRequired"`
	Qualification       string       `json:"qualification"`
	SkillsRequired      string       `json:"skillsRequired"`
	JobDescription      string       `json:"jobDescription"`
	Responsibilities    string       `json:"responsibilities"`
	ApplicationFee      string       `json:"applicationFee"`
	ApplicationDeadline string       `json:"applicationDeadline"`
	PostedBy            Poster       `json:"postedBy"`
	Status              string       `json:"status" validate:"omitempty,oneof=Active Draft Closed"`
}

func (j *JobDraft) Validate() error {
	if strings.TrimSpace(j.JobType) == "" {
		j.JobType = "Full-Time"
	}
	if strings.TrimSpace(j.Status) == "" {
		j.Status = "Active"
	}
	if strings.TrimSpace(j.SalaryRange.Currency) == "" {
		j.SalaryRange.Currency = "INR"
	}
	if strings.TrimSpace(j.ExperienceRequired.Unit) == "" {
		j.ExperienceRequired.Unit = "years"
	}

	fields := validation.FieldErrors{}
	if err := validation.Struct(j); err != nil {
		fields = validation.FromError(err)
	}
	if strings.TrimSpace(j.JobID) == "" || strings.TrimSpace(j.JobTitle) == "" {
		fields.Add("jobId", "Job ID and Job Title are required.")
	}
	if deadline := strings.TrimSpace(j.ApplicationDeadline); deadline != "" {
		if _, err := parseDeadline(deadline); err != nil {
			fields.Add("applicationDeadline", "Invalid date.")
		}
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (j *JobDraft) Target() Target {
	id := strings.TrimSpace(j.ID)
	if id == "" {
		return Target{Collection: "jobs", Action: "create"}
	}
	return Target{Collection: "jobs", Action: "update", RecordID: id}
}

func (j *JobDraft) Payload() map[string]any {
	payload := map[string]any{
		"jobId":      strings.TrimSpace(j.JobID),
		"jobTitle":   strings.TrimSpace(j.JobTitle),
		"department": strings.TrimSpace(j.Department),
		"jobType":    j.JobType,
		"location": map[string]any{
			"city":    strings.TrimSpace(j.Location.City),
			"state":   strings.TrimSpace(j.Location.State),
			"country": strings.TrimSpace(j.Location.Country),
			"remote":  j.Location.Remote,
		},
		"salaryRange":        j.SalaryRange.payload("currency", j.SalaryRange.Currency),
		"experienceRequired": j.ExperienceRequired.payload("unit", j.ExperienceRequired.Unit),
		"qualification":      strings.TrimSpace(j.Qualification),
		"skillsRequired":     SplitList(j.SkillsRequired),
		"jobDescription":     strings.TrimSpace(j.JobDescription),
		"responsibilities":   SplitList(j.Responsibilities),
		"applicationFee":     map[string]any{},
		"postedBy": map[string]any{
			"name":  strings.TrimSpace(j.PostedBy.Name),
			"email": strings.TrimSpace(j.PostedBy.Email),
		},
		"status": j.Status,
	}
	if fee, ok := parseNumber(j.ApplicationFee); ok {
		payload["applicationFee"] = map[string]any{"general": fee}
	}
	if deadline, err := parseDeadline(strings.TrimSpace(j.ApplicationDeadline)); err == nil {
		payload["applicationDeadline"] = deadline.UTC().Format(time.RFC3339Nano)
	} else {
		payload["applicationDeadline"] = nil
	}
	return payload
}

// SplitList splits comma or newline separated text, dropping blank entries.
func SplitList(value string) []string {
	out := []string{}
	for _, item := range listSeparator.Split(value, -1) {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (r NumericRange) payload(labelKey, label string) map[string]any {
	out := map[string]any{labelKey: label}
	if lower, ok := parseNumber(r.Min); ok {
		out["min"] = lower
	}
	if upper, ok := parseNumber(r.Max); ok {
		out["max"] = upper
	}
	return out
}

func parseNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	return parsed, err == nil
}

func parseDeadline(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}

// ApplicantStatus moves an applicant through the hiring pipeline.
type ApplicantStatus struct {
	ApplicantID string `json:"applicantId" validate:"required"`
	Status      string `json:"status" validate:"required,oneof='New' 'Reviewed' 'Shortlisted' 'Rejected' 'Hired' 'On Hold'"`
}

func (a *ApplicantStatus) Validate() error {
	a.Status = strings.TrimSpace(a.Status)
	return validation.Struct(a)
}

func (a *ApplicantStatus) Target() Target {
	return Target{Collection: "applicants", Action: "update_status", RecordID: strings.TrimSpace(a.ApplicantID)}
}

func (a *ApplicantStatus) Payload() map[string]any {
	return map[string]any{"status": a.Status}
}
