package service

import (
	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/entity"
)

// Summarize counts records per status and how many sites yielded contacts.
func Summarize(records []entity.ResultRecord) dto.ProgressSummary {
	summary := dto.ProgressSummary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case entity.RecordPending:
			summary.Pending++
		case entity.RecordProcessing:
			summary.Processing++
		case entity.RecordDone:
			summary.Done++
		case entity.RecordFailed:
			summary.Failed++
		}
		if len(rec.Emails) > 0 {
			summary.WithEmails++
		}
		if len(rec.SocialLinks()) > 0 {
			summary.WithSocials++
		}
	}
	if summary.Total > 0 {
		summary.Percent = (summary.Done + summary.Failed) * 100 / summary.Total
	}
	return summary
}
