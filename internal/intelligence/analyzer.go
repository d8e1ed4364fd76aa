package intelligence

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"fsintel/internal/output"
	"fsintel/internal/query"
	"fsintel/internal/storage"
)

// Analyzer runs the intelligence pass over one session. All data comes
// through the query layer; the analyzer never touches the scanned tree.
type Analyzer struct {
	engine     *query.Engine
	categories *CategorySet
	logger     *slog.Logger
}

func NewAnalyzer(engine *query.Engine, categories *CategorySet, logger *slog.Logger) *Analyzer {
	return &Analyzer{engine: engine, categories: categories, logger: logger}
}

// Analyze assembles every section for sessionID. The session must
// exist; a running or failed session is analyzed over whatever rows it
// has.
func (a *Analyzer) Analyze(sessionID string) (*Analysis, error) {
	session, err := a.engine.Session(sessionID)
	if err != nil {
		return nil, err
	}

	// Age buckets anchor to the scan itself so a report re-rendered
	// later is unchanged.
	anchor := session.StartTime
	if session.EndTime != nil {
		anchor = *session.EndTime
	}

	analysis := &Analysis{SessionID: sessionID, RootPath: session.RootPath}

	if analysis.Sizes, err = a.sizeStats(sessionID); err != nil {
		return nil, err
	}
	if analysis.Hierarchy, err = a.hierarchy(sessionID); err != nil {
		return nil, err
	}
	if analysis.Distribution, err = a.distribution(sessionID, analysis.Sizes.TotalFiles); err != nil {
		return nil, err
	}
	if analysis.Project, err = a.detectProject(sessionID); err != nil {
		return nil, err
	}
	analysis.Categories = a.categorize(analysis.Distribution)
	if analysis.Clusters, err = a.clusters(sessionID); err != nil {
		return nil, err
	}
	if analysis.Duplicates, err = a.engine.GetDuplicateFiles(sessionID); err != nil {
		return nil, err
	}
	if analysis.Activity, err = a.activity(sessionID, anchor); err != nil {
		return nil, err
	}
	if analysis.Risk, err = a.assessRisk(sessionID); err != nil {
		return nil, err
	}
	analysis.Insights = a.deriveInsights(analysis)

	a.logger.Info("intelligence pass complete",
		"session_id", sessionID,
		"files", analysis.Sizes.TotalFiles,
		"risk_findings", len(analysis.Risk.Findings))
	return analysis, nil
}

func (a *Analyzer) sizeStats(sessionID string) (SizeStats, error) {
	res, err := a.engine.ExecuteSQL(sessionID, `
		SELECT COUNT(*), COALESCE(SUM(file_size), 0), COALESCE(AVG(file_size), 0),
		       COALESCE(MIN(file_size), 0), COALESCE(MAX(file_size), 0)
		FROM files WHERE session_id = ?`, []interface{}{sessionID})
	if err != nil {
		return SizeStats{}, err
	}
	row := res.Rows[0]
	return SizeStats{
		TotalFiles:  asInt64(row[0]),
		TotalSize:   asInt64(row[1]),
		AverageSize: output.RoundFloat(asFloat(row[2])),
		MinSize:     asInt64(row[3]),
		MaxSize:     asInt64(row[4]),
	}, nil
}

func (a *Analyzer) hierarchy(sessionID string) ([]DirStat, error) {
	res, err := a.engine.ExecuteSQL(sessionID, `
		SELECT parent_directory, MIN(depth_level), COUNT(*), SUM(file_size)
		FROM files WHERE session_id = ?
		GROUP BY parent_directory
		ORDER BY parent_directory ASC`, []interface{}{sessionID})
	if err != nil {
		return nil, err
	}
	stats := make([]DirStat, 0, len(res.Rows))
	for _, row := range res.Rows {
		stats = append(stats, DirStat{
			Directory: asString(row[0]),
			Depth:     int(asInt64(row[1])),
			FileCount: asInt64(row[2]),
			TotalSize: asInt64(row[3]),
		})
	}
	return stats, nil
}

func (a *Analyzer) distribution(sessionID string, totalFiles int64) ([]ExtStat, error) {
	res, err := a.engine.ExecuteSQL(sessionID, `
		SELECT file_extension, COUNT(*), SUM(file_size)
		FROM files WHERE session_id = ?
		GROUP BY file_extension
		ORDER BY COUNT(*) DESC, file_extension ASC`, []interface{}{sessionID})
	if err != nil {
		return nil, err
	}
	stats := make([]ExtStat, 0, len(res.Rows))
	for _, row := range res.Rows {
		s := ExtStat{
			Extension: asString(row[0]),
			Count:     asInt64(row[1]),
			TotalSize: asInt64(row[2]),
		}
		if totalFiles > 0 {
			s.Percentage = output.RoundFloat(float64(s.Count) / float64(totalFiles) * 100)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func (a *Analyzer) categorize(distribution []ExtStat) map[string]CategoryStat {
	result := make(map[string]CategoryStat)
	for _, ext := range distribution {
		cat := a.categories.Categorize(ext.Extension)
		stat := result[cat]
		stat.Count += ext.Count
		stat.TotalSize += ext.TotalSize
		stat.Extensions = append(stat.Extensions, ext.Extension)
		result[cat] = stat
	}
	for cat, stat := range result {
		sort.Strings(stat.Extensions)
		result[cat] = stat
	}
	return result
}

func (a *Analyzer) clusters(sessionID string) ([]Cluster, error) {
	res, err := a.engine.ExecuteSQL(sessionID, `
		SELECT parent_directory, file_extension, COUNT(*)
		FROM files WHERE session_id = ?
		GROUP BY parent_directory, file_extension
		ORDER BY parent_directory ASC, file_extension ASC`, []interface{}{sessionID})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		extensions []string
		byCategory map[string]int64
		total      int64
	}
	order := []string{}
	buckets := map[string]*bucket{}
	for _, row := range res.Rows {
		dir, ext, count := asString(row[0]), asString(row[1]), asInt64(row[2])
		b, ok := buckets[dir]
		if !ok {
			b = &bucket{byCategory: map[string]int64{}}
			buckets[dir] = b
			order = append(order, dir)
		}
		b.extensions = append(b.extensions, ext)
		b.byCategory[a.categories.Categorize(ext)] += count
		b.total += count
	}

	clusters := make([]Cluster, 0, len(order))
	for _, dir := range order {
		b := buckets[dir]
		clusters = append(clusters, Cluster{
			Directory:       dir,
			FileCount:       b.total,
			Extensions:      b.extensions,
			ContentType:     dominantCategory(b.byCategory),
			ComplexityScore: complexityScore(len(b.extensions), b.total),
		})
	}
	return clusters, nil
}

// dominantCategory picks the category with the most files; ties break
// alphabetically so the output stays stable.
func dominantCategory(byCategory map[string]int64) string {
	best, bestCount := "", int64(-1)
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if byCategory[name] > bestCount {
			best, bestCount = name, byCategory[name]
		}
	}
	return best
}

// complexityScore grows with extension variety and, slightly, with
// volume. Capped at 10.
func complexityScore(extensionKinds int, fileCount int64) float64 {
	score := float64(extensionKinds) + float64(fileCount)/50
	if score > 10 {
		score = 10
	}
	return output.RoundFloat(score)
}

// activityWindow caps the recent-files listing.
const activityWindow = 50

func (a *Analyzer) activity(sessionID string, anchor time.Time) (Activity, error) {
	res, err := a.engine.ExecuteSQL(sessionID, `
		SELECT file_name, file_path, modified_date
		FROM files WHERE session_id = ? AND modified_date IS NOT NULL
		ORDER BY modified_date DESC, file_path ASC
		LIMIT ?`, []interface{}{sessionID, activityWindow})
	if err != nil {
		return Activity{}, err
	}
	act := Activity{RecentFiles: make([]ActivityEntry, 0, len(res.Rows))}
	for _, row := range res.Rows {
		act.RecentFiles = append(act.RecentFiles, ActivityEntry{
			Name:         asString(row[0]),
			Path:         asString(row[1]),
			ModifiedDate: asString(row[2]),
		})
	}

	day := storage.FormatTimestamp(anchor.Add(-24 * time.Hour))
	week := storage.FormatTimestamp(anchor.Add(-7 * 24 * time.Hour))
	month := storage.FormatTimestamp(anchor.Add(-30 * 24 * time.Hour))
	trendRes, err := a.engine.ExecuteSQL(sessionID, `
		SELECT
			SUM(CASE WHEN modified_date >= ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN modified_date >= ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN modified_date >= ? THEN 1 ELSE 0 END),
			COUNT(*)
		FROM files
		WHERE session_id = ? AND modified_date IS NOT NULL`,
		[]interface{}{day, week, month, sessionID})
	if err != nil {
		return Activity{}, err
	}
	row := trendRes.Rows[0]
	total := asInt64(row[3])
	act.Trends = ActivityTrends{
		LastDay:   asInt64(row[0]),
		LastWeek:  asInt64(row[1]),
		LastMonth: asInt64(row[2]),
		Older:     total - asInt64(row[2]),
	}
	return act, nil
}

// asInt64 and friends unpack the loosely typed values the raw SQL
// surface returns.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
