package intelligence

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"fsintel/internal/output"
)

func trimPercent(p float64) string {
	return output.FormatFloat(p)
}

// deriveInsights turns the computed sections into short statements a
// reader can act on. Phrasing is fixed so reports stay diffable.
func (a *Analyzer) deriveInsights(analysis *Analysis) Insights {
	var in Insights

	in.KeyInsights = append(in.KeyInsights, fmt.Sprintf(
		"Classified as %s with %d%% confidence.",
		analysis.Project.Type, analysis.Project.Confidence))
	in.KeyInsights = append(in.KeyInsights, fmt.Sprintf(
		"%d files totaling %s across %d directories.",
		analysis.Sizes.TotalFiles,
		humanize.Bytes(uint64(analysis.Sizes.TotalSize)),
		len(analysis.Hierarchy)))

	if len(analysis.Distribution) > 0 {
		top := analysis.Distribution[0]
		label := top.Extension
		if label == "" {
			label = "(no extension)"
		}
		in.KeyInsights = append(in.KeyInsights, fmt.Sprintf(
			"Most common file type is %s (%d files, %s%% of the tree).",
			label, top.Count, trimPercent(top.Percentage)))
	}

	if wasted := totalWasted(analysis); wasted > 0 {
		in.KeyInsights = append(in.KeyInsights, fmt.Sprintf(
			"%d duplicate groups waste %s.",
			len(analysis.Duplicates), humanize.Bytes(uint64(wasted))))
		in.Recommendations = append(in.Recommendations,
			"Deduplicate the flagged groups to reclaim space.")
	}

	if high := analysis.Risk.Counts[SeverityHigh]; high > 0 {
		in.KeyInsights = append(in.KeyInsights, fmt.Sprintf(
			"%d files have names suggesting stored credentials.", high))
		in.Recommendations = append(in.Recommendations,
			"Review the high-severity findings and move credentials into a secret manager.")
	}
	if med := analysis.Risk.Counts[SeverityMedium]; med > 0 {
		in.Recommendations = append(in.Recommendations,
			"Verify the flagged executables are expected in this tree.")
	}

	if analysis.Activity.Trends.Older > analysis.Activity.Trends.LastMonth*4 &&
		analysis.Activity.Trends.Older > 20 {
		in.Recommendations = append(in.Recommendations,
			"Most files are untouched for over a month; consider archiving cold data.")
	}

	if len(in.Recommendations) == 0 {
		in.Recommendations = append(in.Recommendations,
			"No immediate action needed; rescan periodically to track changes.")
	}
	return in
}

func totalWasted(analysis *Analysis) int64 {
	var total int64
	for _, g := range analysis.Duplicates {
		total += g.WastedSpace
	}
	return total
}
