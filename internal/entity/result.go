package entity

import "time"

// RecordStatus is the extraction state of a single URL within a job.
type RecordStatus string

const (
	RecordPending    RecordStatus = "pending"
	RecordProcessing RecordStatus = "processing"
	RecordDone       RecordStatus = "done"
	RecordFailed     RecordStatus = "failed"
)

// Valid reports whether the status is one of the known record states.
func (s RecordStatus) Valid() bool {
	switch s {
	case RecordPending, RecordProcessing, RecordDone, RecordFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the record has reached done or failed.
func (s RecordStatus) IsTerminal() bool {
	return s == RecordDone || s == RecordFailed
}

// CanTransitionTo reports whether a record may move from s to next.
// Terminal records never change; pending is never re-entered.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	if !next.Valid() || s.IsTerminal() {
		return false
	}
	switch s {
	case RecordPending:
		return next != RecordPending
	case RecordProcessing:
		return next != RecordPending
	}
	return false
}

// ResultRecord is the extraction outcome for one submitted URL.
type ResultRecord struct {
	URL           string       `json:"url"`
	Emails        []string     `json:"emails"`
	Facebook      []string     `json:"facebook"`
	Instagram     []string     `json:"instagram"`
	TikTok        []string     `json:"tiktok"`
	ScreenshotRef *string      `json:"screenshot_ref,omitempty"`
	Status        RecordStatus `json:"status"`
	Message       string       `json:"message,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// NewPendingRecord returns the initial record for a freshly submitted URL.
func NewPendingRecord(url string, now time.Time) ResultRecord {
	return ResultRecord{
		URL:       url,
		Emails:    []string{},
		Facebook:  []string{},
		Instagram: []string{},
		TikTok:    []string{},
		Status:    RecordPending,
		Timestamp: now,
	}
}

// HasScreenshot reports whether a screenshot reference was captured.
func (r ResultRecord) HasScreenshot() bool {
	return r.ScreenshotRef != nil && *r.ScreenshotRef != ""
}

// SocialLinks returns every social profile link across platforms.
func (r ResultRecord) SocialLinks() []string {
	links := make([]string, 0, len(r.Facebook)+len(r.Instagram)+len(r.TikTok))
	links = append(links, r.Facebook...)
	links = append(links, r.Instagram...)
	links = append(links, r.TikTok...)
	return links
}

// Clone returns a deep copy so callers cannot mutate stored slices.
func (r ResultRecord) Clone() ResultRecord {
	out := r
	out.Emails = cloneStrings(r.Emails)
	out.Facebook = cloneStrings(r.Facebook)
	out.Instagram = cloneStrings(r.Instagram)
	out.TikTok = cloneStrings(r.TikTok)
	if r.ScreenshotRef != nil {
		ref := *r.ScreenshotRef
		out.ScreenshotRef = &ref
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string{}, values...)
}
