package intelligence

import (
	"fmt"
	"strings"
)

// Project type labels. Detection looks only at the largest files, which
// is cheap and in practice characterizes the tree well.
const (
	ProjectObsidian = "Obsidian Vault"
	ProjectWeb      = "Web Project"
	ProjectData     = "Data Project"
	ProjectGeneral  = "General Project"
)

// projectSampleSize bounds how many of the largest files detection
// inspects.
const projectSampleSize = 20

var webExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true, ".jsx": true,
	".ts": true, ".tsx": true, ".vue": true, ".scss": true,
}

var dataExtensions = map[string]bool{
	".csv": true, ".xlsx": true, ".parquet": true, ".sql": true,
	".db": true, ".sqlite": true, ".jsonl": true,
}

// detectProject classifies the session from its largest files. The
// rules are ordered; the first hit wins.
func (a *Analyzer) detectProject(sessionID string) (ProjectType, error) {
	sample, err := a.engine.ExecuteSQL(sessionID, `
		SELECT file_path, file_extension
		FROM files WHERE session_id = ?
		ORDER BY file_size DESC, file_path ASC
		LIMIT ?`, []interface{}{sessionID, projectSampleSize})
	if err != nil {
		return ProjectType{}, err
	}

	// The .obsidian marker may live in a small hidden file that never
	// makes the size sample, so it gets its own existence check.
	marker, err := a.engine.ExecuteSQL(sessionID, `
		SELECT COUNT(*) FROM files
		WHERE session_id = ? AND (file_path LIKE '%/.obsidian/%' OR file_path LIKE '%/.obsidian')`,
		[]interface{}{sessionID})
	if err != nil {
		return ProjectType{}, err
	}
	if asInt64(marker.Rows[0][0]) > 0 {
		return ProjectType{
			Type:       ProjectObsidian,
			Confidence: 95,
			Indicators: []string{".obsidian directory present"},
		}, nil
	}

	var web, data int
	for _, row := range sample.Rows {
		path, ext := asString(row[0]), asString(row[1])
		if strings.Contains(path, "/.obsidian/") {
			return ProjectType{
				Type:       ProjectObsidian,
				Confidence: 95,
				Indicators: []string{".obsidian directory present"},
			}, nil
		}
		if webExtensions[ext] {
			web++
		}
		if dataExtensions[ext] {
			data++
		}
	}

	switch {
	case web > 5:
		return ProjectType{
			Type:       ProjectWeb,
			Confidence: 85,
			Indicators: []string{fmt.Sprintf("%d web assets among the %d largest files", web, len(sample.Rows))},
		}, nil
	case data > 3:
		return ProjectType{
			Type:       ProjectData,
			Confidence: 80,
			Indicators: []string{fmt.Sprintf("%d data files among the %d largest files", data, len(sample.Rows))},
		}, nil
	default:
		return ProjectType{
			Type:       ProjectGeneral,
			Confidence: 60,
			Indicators: []string{"no dominant file type signal"},
		}, nil
	}
}
