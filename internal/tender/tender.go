package tender

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a stored tender. NEW and INTERESTING are
// owned by the crawl pipeline; APPLIED and REJECTED are operator decisions the
// pipeline must never write.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusInteresting Status = "INTERESTING"
	StatusApplied     Status = "APPLIED"
	StatusRejected    Status = "REJECTED"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusNew, StatusInteresting, StatusApplied, StatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("unknown tender status %q", raw)
	}
}

// DateLayout is the canonical form for deadline and published_at.
const DateLayout = "2006-01-02"

// MaxDescriptionRunes bounds stored descriptions. Truncation is silent.
const MaxDescriptionRunes = 2000

// FallbackLabel is stored when the categorizer finds no keyword match.
const FallbackLabel = "Sonstige Bauleistungen"

// Analysis is an operator- or automation-attached annotation. The crawl
// pipeline reads and writes around it but never into it.
type Analysis struct {
	Summary        string   `json:"summary"`
	RelevanceScore int      `json:"relevanceScore"`
	KeyRisks       []string `json:"keyRisks"`
	Recommendation string   `json:"recommendation"`
}

// Record is the persisted representation of one procurement announcement.
type Record struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Authority    string    `db:"authority" json:"authority"`
	Location     string    `db:"location" json:"location"`
	Deadline     string    `db:"deadline" json:"deadline"`
	PublishedAt  string    `db:"published_at" json:"publishedAt"`
	Budget       *string   `db:"budget" json:"budget,omitempty"`
	Category     string    `db:"category" json:"category"`
	Description  string    `db:"description" json:"description"`
	Status       Status    `db:"status" json:"status"`
	SourceURL    string    `db:"source_url" json:"sourceUrl"`
	SourcePortal string    `db:"source_portal" json:"sourcePortal"`
	CrawledAt    time.Time `db:"crawled_at" json:"crawledAt"`
	AnalysisJSON *string   `db:"analysis" json:"-"`
}

// DecodeAnalysis parses the stored analysis column. Records without one
// yield nil.
func (r Record) DecodeAnalysis() (*Analysis, error) {
	if r.AnalysisJSON == nil || strings.TrimSpace(*r.AnalysisJSON) == "" {
		return nil, nil
	}
	var a Analysis
	if err := json.Unmarshal([]byte(*r.AnalysisJSON), &a); err != nil {
		return nil, fmt.Errorf("decode analysis for %s: %w", r.ID, err)
	}
	return &a, nil
}

// Raw is what an adapter yields for one candidate before the pipeline assigns
// the content-hash id and the category.
type Raw struct {
	Title        string `validate:"required"`
	Authority    string
	Location     string
	Deadline     string
	PublishedAt  string
	Budget       *string
	Description  string
	SourceURL    string `validate:"required"`
	SourcePortal string `validate:"required"`

	// HashText, when set, derives the id from normalized content instead of
	// the source URL (heuristic adapters without stable detail links).
	HashText string
}

// IDFromURL derives the stable record id from a source URL.
func IDFromURL(sourceURL string) string {
	return contentID(strings.TrimSpace(sourceURL))
}

// IDFromText derives the stable record id from normalized extracted text.
func IDFromText(text string) string {
	return contentID(NormalizeWhitespace(text))
}

func contentID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return "t-" + hex.EncodeToString(sum[:])[:12]
}

// NormalizeWhitespace collapses all runs of whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate bounds s to max runes. It never errors; over-long input is cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// FallbackDates returns the published/deadline pair used when the source gave
// nothing parseable: publication defaults to the extraction time, the deadline
// to extraction time plus offsetDays.
func FallbackDates(now time.Time, offsetDays int) (publishedAt, deadline string) {
	return now.Format(DateLayout), now.AddDate(0, 0, offsetDays).Format(DateLayout)
}
