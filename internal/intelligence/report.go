package intelligence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"fsintel/internal/config"
	"fsintel/internal/output"
)

// Report file names. The JSON name is part of the external contract.
const (
	MachineReportFile = "ai_ready_analysis.json"
	HumanReportFile   = "human_readable_report.md"
	WorkbookFile      = "analysis_workbook.xlsx"
)

// ReportConfigFile is the optional per-root report settings file.
const ReportConfigFile = "report.toml"

// ReportConfig tunes where and what the renderers write.
type ReportConfig struct {
	OutputDir    string `toml:"output_dir"`
	MachineFile  string `toml:"machine_file"`
	HumanFile    string `toml:"human_file"`
	WorkbookFile string `toml:"workbook_file"`
	Workbook     bool   `toml:"workbook"`
}

// DefaultReportConfig writes all three artifacts into root's state
// directory.
func DefaultReportConfig(root string) ReportConfig {
	return ReportConfig{
		OutputDir:    filepath.Join(root, config.ConfigDirName, "reports"),
		MachineFile:  MachineReportFile,
		HumanFile:    HumanReportFile,
		WorkbookFile: WorkbookFile,
		Workbook:     true,
	}
}

// LoadReportConfig merges <root>/.fsintel/report.toml over the
// defaults. A missing file is not an error.
func LoadReportConfig(root string) (ReportConfig, error) {
	cfg := DefaultReportConfig(root)
	path := filepath.Join(root, config.ConfigDirName, ReportConfigFile)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parsing %s: %w", ReportConfigFile, err)
	}
	return cfg, nil
}

// MachineReport assembles the JSON document. Everything except the
// timestamp is a pure function of the analysis.
func MachineReport(analysis *Analysis, generatedAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{
			"analysis_timestamp": generatedAt.UTC().Format(time.RFC3339),
			"session_id":         analysis.SessionID,
			"analyzer_version":   AnalyzerVersion,
			"ai_compatibility":   "universal",
		},
		"analysis_results": map[string]interface{}{
			"project_context": map[string]interface{}{
				"root_path":        analysis.RootPath,
				"project_type":     analysis.Project,
				"folder_hierarchy": analysis.Hierarchy,
				"size_analysis":    analysis.Sizes,
			},
			"file_intelligence": map[string]interface{}{
				"distribution": analysis.Distribution,
				"categories":   analysis.Categories,
			},
			"content_relationships": map[string]interface{}{
				"clusters":   analysis.Clusters,
				"duplicates": analysis.Duplicates,
			},
			"usage_intelligence": analysis.Activity,
			"risk_assessment":    analysis.Risk,
			"ai_insights":        analysis.Insights,
		},
		"ai_instructions": map[string]interface{}{
			"purpose":     "Structured snapshot of one directory scan for downstream assistants.",
			"consumption": "Read analysis_results section by section; all lists are pre-sorted.",
			"caveats":     "Derived from file metadata only; no file content was inspected.",
		},
	}
}

// RenderMarkdown produces the human report.
func RenderMarkdown(analysis *Analysis, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Directory Analysis Report\n\n")
	fmt.Fprintf(&b, "Session `%s`, generated %s.\n\n",
		analysis.SessionID, generatedAt.UTC().Format(time.RFC3339))

	fmt.Fprintf(&b, "## Project Overview\n\n")
	fmt.Fprintf(&b, "- Root: `%s`\n", analysis.RootPath)
	fmt.Fprintf(&b, "- Type: %s (%d%% confidence)\n", analysis.Project.Type, analysis.Project.Confidence)
	fmt.Fprintf(&b, "- Files: %d\n", analysis.Sizes.TotalFiles)
	fmt.Fprintf(&b, "- Total size: %s\n", humanize.Bytes(uint64(analysis.Sizes.TotalSize)))
	fmt.Fprintf(&b, "- Directories: %d\n\n", len(analysis.Hierarchy))

	fmt.Fprintf(&b, "## Key Insights\n\n")
	for _, insight := range analysis.Insights.KeyInsights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	b.WriteString("\n")

	if len(analysis.Distribution) > 0 {
		fmt.Fprintf(&b, "### File Types\n\n")
		fmt.Fprintf(&b, "| Extension | Count | Total Size | Share |\n")
		fmt.Fprintf(&b, "|---|---|---|---|\n")
		for i, ext := range analysis.Distribution {
			if i >= 10 {
				break
			}
			label := ext.Extension
			if label == "" {
				label = "(none)"
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %s%% |\n",
				label, ext.Count, humanize.Bytes(uint64(ext.TotalSize)), output.FormatFloat(ext.Percentage))
		}
		b.WriteString("\n")
	}

	if len(analysis.Risk.Findings) > 0 {
		fmt.Fprintf(&b, "### Risk Findings\n\n")
		for _, f := range analysis.Risk.Findings {
			fmt.Fprintf(&b, "- **%s**: `%s` (%s)\n", f.Severity, f.Path, f.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Recommendations\n\n")
	for _, rec := range analysis.Insights.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	return b.String()
}

// WriteReports renders every configured artifact for the analysis and
// returns the paths written.
func WriteReports(analysis *Analysis, cfg ReportConfig, generatedAt time.Time) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	machine, err := output.EncodeIndented(MachineReport(analysis, generatedAt), "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding machine report: %w", err)
	}
	machinePath := filepath.Join(cfg.OutputDir, cfg.MachineFile)
	if err := os.WriteFile(machinePath, machine, 0o644); err != nil {
		return nil, err
	}
	paths := []string{machinePath}

	humanPath := filepath.Join(cfg.OutputDir, cfg.HumanFile)
	if err := os.WriteFile(humanPath, []byte(RenderMarkdown(analysis, generatedAt)), 0o644); err != nil {
		return nil, err
	}
	paths = append(paths, humanPath)

	if cfg.Workbook {
		workbookPath := filepath.Join(cfg.OutputDir, cfg.WorkbookFile)
		if err := WriteWorkbook(analysis, workbookPath); err != nil {
			return nil, fmt.Errorf("writing workbook: %w", err)
		}
		paths = append(paths, workbookPath)
	}
	return paths, nil
}
