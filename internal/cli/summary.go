package cli

import (
	"fmt"
	"strings"

	"github.com/hadron-dev/hadron/internal/compattool"
)

type ToolsSummary struct {
	Mode       string            `json:"mode"`
	ClientRoot string            `json:"client_root"`
	Tools      []compattool.Tool `json:"tools"`
}

type LintFinding struct {
	UserID  string `json:"user_id"`
	AppID   string `json:"app_id"`
	Options string `json:"options"`
	Issue   string `json:"issue"`
}

type DoctorSummary struct {
	Mode           string        `json:"mode"`
	ClientRoot     string        `json:"client_root,omitempty"`
	ConfigFile     string        `json:"config_file,omitempty"`
	Healthy        bool          `json:"healthy"`
	Libraries      []string      `json:"libraries,omitempty"`
	StaleLibraries []string      `json:"stale_libraries,omitempty"`
	ClientConfig   bool          `json:"client_config"`
	DefaultTool    string        `json:"default_tool,omitempty"`
	Tools          int           `json:"tools"`
	Users          []string      `json:"users,omitempty"`
	Lint           []LintFinding `json:"lint,omitempty"`
	Missing        []string      `json:"missing,omitempty"`
	Suggestions    []string      `json:"suggestions,omitempty"`
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
