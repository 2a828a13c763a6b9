/*
Package cli provides helpers shared by the strcalc commands.

Output Formatting:

Commands accept --format text|json and render results through a Formatter:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Exit Codes:

A rejected expression or a failed test case exits with ExitRejected. The
command prints its own diagnostics first and returns a silent error:

	return cli.Rejected(err)

Progress Reporting:

The lint command keeps a status line on stderr with a running tally of
rejections per issue type:

	progress := cli.NewLintProgress(os.Stderr, len(lines))
	for _, line := range lines {
		progress.Observe(issueTypesOf(line)) // nil when accepted
	}
	tally := progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
