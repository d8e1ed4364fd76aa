// Package intelligence derives analytics from a completed scan session:
// project classification, structure and distribution aggregates, content
// clusters, activity patterns, and a filename-based risk assessment. The
// pass is read-only over the store and renders into a machine report and
// a human report.
package intelligence

import "fsintel/internal/query"

// AnalyzerVersion is stamped into report metadata.
const AnalyzerVersion = "2.0"

// Severity ranks a risk finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Weight orders severities for sorting, highest first.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ProjectType classifies the scanned tree.
type ProjectType struct {
	Type       string   `json:"type"`
	Confidence int      `json:"confidence"`
	Indicators []string `json:"indicators"`
}

// DirStat is one folder-hierarchy aggregate.
type DirStat struct {
	Directory string `json:"directory"`
	Depth     int    `json:"depth"`
	FileCount int64  `json:"file_count"`
	TotalSize int64  `json:"total_size"`
}

// ExtStat is one file-distribution aggregate.
type ExtStat struct {
	Extension  string  `json:"extension"`
	Count      int64   `json:"count"`
	TotalSize  int64   `json:"total_size"`
	Percentage float64 `json:"percentage"`
}

// SizeStats summarizes the whole session.
type SizeStats struct {
	TotalFiles  int64   `json:"total_files"`
	TotalSize   int64   `json:"total_size"`
	AverageSize float64 `json:"avg"`
	MinSize     int64   `json:"min"`
	MaxSize     int64   `json:"max"`
}

// CategoryStat aggregates one fixed category.
type CategoryStat struct {
	Count      int64    `json:"count"`
	TotalSize  int64    `json:"total_size"`
	Extensions []string `json:"extensions"`
}

// Cluster describes the content of one directory.
type Cluster struct {
	Directory       string   `json:"directory"`
	FileCount       int64    `json:"file_count"`
	Extensions      []string `json:"extensions"`
	ContentType     string   `json:"content_type"`
	ComplexityScore float64  `json:"complexity_score"`
}

// ActivityEntry is one recently modified file.
type ActivityEntry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	ModifiedDate string `json:"modified_date"`
}

// ActivityTrends buckets files by age relative to the scan itself, so
// re-rendering a session later yields the same numbers.
type ActivityTrends struct {
	LastDay   int64 `json:"last_day"`
	LastWeek  int64 `json:"last_week"`
	LastMonth int64 `json:"last_month"`
	Older     int64 `json:"older"`
}

// Activity bundles the usage section.
type Activity struct {
	RecentFiles []ActivityEntry `json:"recent_files"`
	Trends      ActivityTrends  `json:"activity_trends"`
}

// RiskFinding flags one suspicious file.
type RiskFinding struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// RiskAssessment bundles findings with per-severity counts.
type RiskAssessment struct {
	Findings []RiskFinding      `json:"findings"`
	Counts   map[Severity]int64 `json:"counts"`
}

// Insights holds the derived narrative section.
type Insights struct {
	KeyInsights     []string `json:"key_insights"`
	Recommendations []string `json:"recommendations"`
}

// Analysis is the complete output of one intelligence pass.
type Analysis struct {
	SessionID    string
	RootPath     string
	Project      ProjectType
	Hierarchy    []DirStat
	Distribution []ExtStat
	Sizes        SizeStats
	Categories   map[string]CategoryStat
	Clusters     []Cluster
	Duplicates   []query.DuplicateGroup
	Activity     Activity
	Risk         RiskAssessment
	Insights     Insights
}
