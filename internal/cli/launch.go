package cli

import (
	"os"

	"github.com/hadron-dev/hadron/internal/command"
	"github.com/hadron-dev/hadron/internal/ctxlog"
	"github.com/hadron-dev/hadron/internal/launchopts"
	"github.com/hadron-dev/hadron/internal/steam"
	"github.com/spf13/cobra"
)

func RunLaunch(cmd *cobra.Command, args []string) error {
	dryRun, err := OptionalBoolFlag(cmd, "dry-run", false)
	if err != nil {
		return err
	}
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(sess.ctx)

	st, err := sess.openSteam()
	if err != nil {
		return err
	}
	result, err := st.Resolve(sess.ctx, steam.Request{
		AppID:    args[0],
		ExePath:  args[1],
		UserID:   sess.cfg.UserID,
		Fallback: sess.cfg.CompatTool,
	})
	if err != nil {
		return err
	}
	logger.Info("Resolved launch.",
		"app_id", result.AppID,
		"tool", result.CompatToolName,
		"runtime", result.RuntimePath,
		"prefix", result.CompatDataPath,
	)

	if result.LaunchOptions != nil {
		for _, issue := range launchopts.Lint(*result.LaunchOptions) {
			logger.Warn("Launch options issue.", "app_id", result.AppID, "issue", issue.String())
		}
	}

	pc := command.FromResult(result)
	if dryRun {
		return pc.PrintDryRun(cmd.OutOrStdout())
	}
	return childExit(pc.Execute(sess.ctx, os.Stdout, os.Stderr))
}
