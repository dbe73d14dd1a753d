package tenders

import (
	"go.uber.org/zap"

	"tender-scout/internal/tender"
)

// tenderResponse is a Record with the stored analysis decoded in place. A
// column that fails to decode is logged and dropped rather than failing the
// whole request.
type tenderResponse struct {
	tender.Record
	Analysis *tender.Analysis `json:"analysis,omitempty"`
}

func toResponse(rec tender.Record, logger *zap.SugaredLogger) tenderResponse {
	out := tenderResponse{Record: rec}
	analysis, err := rec.DecodeAnalysis()
	if err != nil {
		logger.Warnw("tender_analysis_decode_failed", "id", rec.ID, "err", err)
		return out
	}
	out.Analysis = analysis
	return out
}

func toResponses(recs []tender.Record, logger *zap.SugaredLogger) []tenderResponse {
	out := make([]tenderResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec, logger))
	}
	return out
}
