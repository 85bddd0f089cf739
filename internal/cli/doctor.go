package cli

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hadron-dev/hadron/internal/compattool"
	"github.com/hadron-dev/hadron/internal/fileutil"
	"github.com/hadron-dev/hadron/internal/launchopts"
	"github.com/hadron-dev/hadron/internal/library"
	"github.com/hadron-dev/hadron/internal/steamerr"
	"github.com/spf13/cobra"
)

func RunDoctor(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}

	summary := DoctorSummary{
		Mode:       "doctor",
		ConfigFile: sess.cfg.Source,
	}

	root, rootErr := sess.clientRoot()
	if rootErr == nil {
		rootErr = library.CheckClientRoot(sess.fsys, root)
	}
	if rootErr != nil {
		summary.Missing = append(summary.Missing, "steam client root")
		summary.Suggestions = append(summary.Suggestions, "pass --steam-dir or set HADRON_STEAM_DIR")
		return printDoctor(cmd, summary, asJSON)
	}
	summary.ClientRoot = root

	libraries, err := library.Discover(sess.ctx, sess.fsys, root)
	if err != nil {
		return err
	}
	summary.Libraries = libraries

	listed, err := library.ReadListing(sess.fsys, root)
	switch {
	case err == nil:
		cleaned := make([]string, 0, len(listed))
		for _, l := range listed {
			cleaned = append(cleaned, path.Clean(filepath.ToSlash(strings.TrimSpace(l))))
		}
		summary.StaleLibraries = fileutil.Difference(fileutil.DedupeStrings(cleaned), libraries)
		if len(summary.StaleLibraries) > 0 {
			summary.Suggestions = append(summary.Suggestions, "remove stale libraries in the Steam storage settings")
		}
	case errors.Is(err, steamerr.ErrNotFound):
		summary.Missing = append(summary.Missing, library.LibraryListFile)
	default:
		summary.Missing = append(summary.Missing, "readable "+library.LibraryListFile)
		summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("check %s: %v", library.ListingPath(root), err))
	}

	if sess.fsys.Exists(compattool.ConfigPath(root)) {
		cfg, err := compattool.LoadClientConfig(sess.fsys, root)
		if err != nil {
			summary.Missing = append(summary.Missing, "readable config.vdf")
			summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("check %s: %v", compattool.ConfigPath(root), err))
		} else {
			summary.ClientConfig = true
			if name, ok := compattool.DefaultName(cfg); ok {
				summary.DefaultTool = name
			}
		}
	} else {
		summary.Missing = append(summary.Missing, "config.vdf")
	}

	tools, err := compattool.List(sess.ctx, sess.fsys, libraries)
	if err != nil {
		return err
	}
	summary.Tools = len(tools)
	if summary.Tools == 0 {
		summary.Missing = append(summary.Missing, "compatibility tools")
		summary.Suggestions = append(summary.Suggestions, "install Proton from the Steam library")
	}

	users, err := launchopts.Users(sess.fsys, root)
	if err != nil {
		return err
	}
	summary.Users = users
	for _, user := range users {
		entries, err := launchopts.AppOptions(sess.fsys, root, user)
		if err != nil {
			summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("check %s: %v", launchopts.LocalConfigPath(root, user), err))
			continue
		}
		for _, entry := range entries {
			for _, issue := range launchopts.Lint(entry.Options) {
				summary.Lint = append(summary.Lint, LintFinding{
					UserID:  entry.UserID,
					AppID:   entry.AppID,
					Options: entry.Options,
					Issue:   issue.String(),
				})
			}
		}
	}
	if len(summary.Lint) > 0 {
		summary.Suggestions = append(summary.Suggestions, "fix the launch options listed above in the game's properties")
	}

	return printDoctor(cmd, summary, asJSON)
}

func printDoctor(cmd *cobra.Command, summary DoctorSummary, asJSON bool) error {
	summary.Missing = fileutil.DedupeStrings(summary.Missing)
	sort.Strings(summary.Missing)
	summary.Suggestions = fileutil.DedupeStrings(summary.Suggestions)
	summary.Healthy = len(summary.Missing) == 0 && len(summary.Lint) == 0 && len(summary.StaleLibraries) == 0

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, summary)
	}

	status := "issues"
	if summary.Healthy {
		status = "ok"
	}
	fmt.Fprintf(out, "doctor: %s\n", status)
	if summary.ConfigFile != "" {
		fmt.Fprintf(out, "config: %s\n", summary.ConfigFile)
	}
	if summary.ClientRoot != "" {
		fmt.Fprintf(out, "client: %s\n", summary.ClientRoot)
		fmt.Fprintf(out, "libraries (%d): %s\n", len(summary.Libraries), SummarizePaths(summary.Libraries, 5))
		if len(summary.StaleLibraries) > 0 {
			fmt.Fprintf(out, "stale libraries (%d): %s\n", len(summary.StaleLibraries), SummarizePaths(summary.StaleLibraries, 5))
		}
		defaultTool := summary.DefaultTool
		if defaultTool == "" {
			defaultTool = "none"
		}
		fmt.Fprintf(out, "compat: config=%t default=%s tools=%d\n", summary.ClientConfig, defaultTool, summary.Tools)
		fmt.Fprintf(out, "users (%d): %s\n", len(summary.Users), SummarizePaths(summary.Users, 8))
	}
	for _, finding := range summary.Lint {
		fmt.Fprintf(out, "lint: user=%s app=%s %s\n", finding.UserID, finding.AppID, finding.Issue)
	}
	if len(summary.Missing) > 0 {
		fmt.Fprintf(out, "missing (%d): %s\n", len(summary.Missing), strings.Join(summary.Missing, ", "))
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Fprintf(out, "next: %s\n", suggestion)
	}
	return nil
}
