package httpapi

import (
	"net/http"
	"strings"

	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/model"
)

// styleConcise is the default summary style; any other style value gets
// the longer length bounds.
const styleConcise = "concise"

// minSummarizeWords is the input size below which the text is returned
// unsummarized.
const minSummarizeWords = 20

type summarizeRequest struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

type summarizeResponse struct {
	OriginalText string `json:"original_text"`
	SummaryText  string `json:"summary_text"`
	Style        string `json:"style"`
}

// handleSummarize serves the synchronous summarization endpoint. It runs
// no pipeline: the hosted model is called inline, and any failure
// degrades to the extractive summary rather than an error response.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "text must not be empty")
		return
	}
	if req.Style == "" {
		req.Style = styleConcise
	}

	writeJSON(w, http.StatusOK, summarizeResponse{
		OriginalText: req.Text,
		SummaryText:  s.summarize(r, req.Text, req.Style),
		Style:        req.Style,
	})
}

func (s *Server) summarize(r *http.Request, text, style string) string {
	// Too short to summarize; echoed back unchanged.
	if len(strings.Fields(text)) < minSummarizeWords {
		return text
	}

	if s.inference != nil && s.inference.Configured() {
		params := inference.SummarizeParams{MaxLength: 100, MinLength: 40}
		if style == styleConcise {
			params = inference.SummarizeParams{MaxLength: 50, MinLength: 20}
		}

		summary, err := s.inference.Summarize(r.Context(), model.CapabilitySummarize, text, params)
		if err == nil && summary != "" && summary != text {
			return summary
		}
		if err != nil {
			s.logger.Warn("Model summarization failed, using extractive summary", "error", err)
		}
	}

	return "[Auto-Summary] " + analysis.ExtractiveSummary(text)
}
