package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/hadron-dev/hadron/internal/fileutil"
	"github.com/hadron-dev/hadron/internal/steam"
	"github.com/hadron-dev/hadron/internal/vdf"
	"github.com/spf13/cobra"
)

func RunInfo(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(cmd, "text", "json", "yaml")
	if err != nil {
		return err
	}
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	st, err := sess.openSteam()
	if err != nil {
		return err
	}
	result, err := st.Resolve(sess.ctx, steam.Request{
		AppID:          args[0],
		SkipExecutable: true,
		UserID:         sess.cfg.UserID,
		Fallback:       sess.cfg.CompatTool,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return fileutil.PrintJSON(out, result)
	case "yaml":
		return fileutil.PrintYAML(out, result)
	}
	printResult(out, result)
	return nil
}

func printResult(w io.Writer, r *steam.Result) {
	name := r.AppName
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "app: %s %s\n", r.AppID, name)
	fmt.Fprintf(w, "client: %s\n", r.ClientRootPath)
	fmt.Fprintf(w, "library: %s\n", r.LibraryPath)
	fmt.Fprintf(w, "install dir: %s\n", r.InstallDir)
	fmt.Fprintf(w, "compat tool: %s\n", r.CompatToolName)
	fmt.Fprintf(w, "runtime: %s\n", r.RuntimePath)
	fmt.Fprintf(w, "prefix: %s\n", r.CompatDataPath)
	if r.LaunchOptions != nil {
		fmt.Fprintf(w, "launch options: %s\n", *r.LaunchOptions)
	} else {
		fmt.Fprintln(w, "launch options: none")
	}
}

func RunTools(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	st, err := sess.openSteam()
	if err != nil {
		return err
	}
	tools, err := st.Tools(sess.ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, ToolsSummary{Mode: "tools", ClientRoot: st.RootPath(), Tools: tools})
	}
	if len(tools) == 0 {
		fmt.Fprintln(out, "no compatibility tools installed")
		return nil
	}
	for _, tool := range tools {
		label := tool.Name
		if tool.DisplayName != "" && tool.DisplayName != tool.Name {
			label = fmt.Sprintf("%s (%s)", tool.Name, tool.DisplayName)
		}
		fmt.Fprintf(out, "%-8s %s\n", tool.Kind, label)
		fmt.Fprintf(out, "         %s\n", tool.Dir)
	}
	return nil
}

func RunVDF(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(cmd, "vdf", "json", "yaml")
	if err != nil {
		return err
	}
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	doc, err := vdf.ParseFile(sess.fsys, filepath.ToSlash(path))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return fileutil.PrintJSON(out, doc)
	case "yaml":
		return fileutil.PrintYAML(out, doc)
	}
	return vdf.Write(out, doc)
}
