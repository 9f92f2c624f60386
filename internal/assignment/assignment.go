package assignment

import (
	"net/url"
	"strings"
	"time"
)

// Length of the hidden " Assignment" label moodle appends to every activity name.
const nameSuffixLength = 11

// Status holds the four rows read around the deadline row of an
// assignment's submission status table. They are always set together.
type Status struct {
	SubmissionStatus string    `json:"submission_status"`
	GradingStatus    string    `json:"grading_status"`
	Deadline         string    `json:"deadline"`
	Due              time.Time `json:"due"`
	Submission       string    `json:"submission"`
}

// Assignment is one assignment activity of a course. ID, Name and Link are
// fixed when the record is built from its course page anchor and must not
// change afterwards; only Status is filled in later, by Enrich.
type Assignment struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Link   string  `json:"link"`
	Status *Status `json:"status,omitempty"`
}

// NewFromAnchor builds a skeleton record from an activity link on a course page.
func NewFromAnchor(name, href string) Assignment {
	return Assignment{
		ID:   idFromLink(href),
		Name: stripNameSuffix(name),
		Link: href,
	}
}

func idFromLink(href string) string {
	if u, err := url.Parse(href); err == nil {
		if id := u.Query().Get("id"); id != "" {
			return id
		}
	}
	idx := strings.Index(href, "id=")
	if idx == -1 {
		return ""
	}
	return href[idx+3:]
}

func stripNameSuffix(name string) string {
	runes := []rune(name)
	if len(runes) <= nameSuffixLength {
		return ""
	}
	return strings.TrimSpace(string(runes[:len(runes)-nameSuffixLength]))
}

// Enrich fills the status block from a rendered status table. It only
// ever applies once; later calls report false and leave the record as is.
func (a *Assignment) Enrich(grid [][]string) bool {
	if a.Status != nil {
		return false
	}
	m, ok := Locate(grid)
	if !ok {
		return false
	}
	status := m.Status
	a.Status = &status
	return true
}

func (a Assignment) Deadline() (string, bool) {
	if a.Status == nil {
		return "", false
	}
	return a.Status.Deadline, true
}

func (a Assignment) Due() (time.Time, bool) {
	if a.Status == nil {
		return time.Time{}, false
	}
	return a.Status.Due, true
}

func (a Assignment) SubmissionStatus() string {
	if a.Status == nil {
		return ""
	}
	return a.Status.SubmissionStatus
}

func (a Assignment) GradingStatus() string {
	if a.Status == nil {
		return ""
	}
	return a.Status.GradingStatus
}

func (a Assignment) Submission() string {
	if a.Status == nil {
		return ""
	}
	return a.Status.Submission
}

// Classified reports whether the status table was located.
func (a Assignment) Classified() bool {
	return a.Status != nil
}
