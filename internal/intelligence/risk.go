package intelligence

import (
	"sort"
	"strings"
)

// sensitiveNameTokens flag files that likely hold credentials. Matching
// is on the file name only, never content.
var sensitiveNameTokens = []string{"password", "secret", "key", "token", "credential"}

// executableExtensions are flagged at medium severity.
var executableExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".ps1": true,
}

// assessRisk flags sensitive-looking names and executables. Findings
// are ordered by severity, then path, so reports are stable.
func (a *Analyzer) assessRisk(sessionID string) (RiskAssessment, error) {
	res, err := a.engine.ExecuteSQL(sessionID, `
		SELECT file_name, file_path, file_extension
		FROM files WHERE session_id = ?
		ORDER BY file_path ASC`, []interface{}{sessionID})
	if err != nil {
		return RiskAssessment{}, err
	}

	assessment := RiskAssessment{Counts: map[Severity]int64{}}
	for _, row := range res.Rows {
		name, path, ext := asString(row[0]), asString(row[1]), asString(row[2])
		lower := strings.ToLower(name)

		if token := matchToken(lower); token != "" {
			assessment.Findings = append(assessment.Findings, RiskFinding{
				Name:     name,
				Path:     path,
				Reason:   "file name contains " + token,
				Severity: SeverityHigh,
			})
			continue
		}
		if executableExtensions[ext] {
			assessment.Findings = append(assessment.Findings, RiskFinding{
				Name:     name,
				Path:     path,
				Reason:   "executable file",
				Severity: SeverityMedium,
			})
		}
	}

	sort.SliceStable(assessment.Findings, func(i, j int) bool {
		fi, fj := assessment.Findings[i], assessment.Findings[j]
		if fi.Severity.Weight() != fj.Severity.Weight() {
			return fi.Severity.Weight() > fj.Severity.Weight()
		}
		return fi.Path < fj.Path
	})
	for _, f := range assessment.Findings {
		assessment.Counts[f.Severity]++
	}
	return assessment, nil
}

func matchToken(lowerName string) string {
	for _, token := range sensitiveNameTokens {
		if strings.Contains(lowerName, token) {
			return token
		}
	}
	return ""
}
