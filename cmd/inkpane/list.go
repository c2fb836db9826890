package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/inkpane/internal/capture"
	"github.com/example/inkpane/internal/theme"
)

// Swapped in tests.
var listMonitorsFn = capture.ListMonitors

type monitorsCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func parseMonitorsCmd(args []string, r *root) (*monitorsCmd, error) {
	fs := flag.NewFlagSet("monitors", flag.ExitOnError)
	cmd := &monitorsCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *monitorsCmd) Program() string { return c.root.program + " monitors" }

func (c *monitorsCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *monitorsCmd) Run() error {
	monitors, err := listMonitorsFn()
	if err != nil {
		return fmt.Errorf("failed to list monitors: %w", err)
	}
	if len(monitors) == 0 {
		fmt.Fprintln(c.stdout, "no monitors available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available monitors (* marks the primary monitor):")
	for _, m := range monitors {
		marker := " "
		if m.Primary {
			marker = "*"
		}
		r := m.Rect
		fmt.Fprintf(c.stdout, "%s %d: %s %dx%d+%d+%d\n", marker, m.Index, m.Name, r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
	}
	fmt.Fprintln(c.stdout, "selectors: <index>, #<index>, primary, or part of the output name")
	return nil
}

type themesCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func parseThemesCmd(args []string, r *root) (*themesCmd, error) {
	fs := flag.NewFlagSet("themes", flag.ExitOnError)
	cmd := &themesCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *themesCmd) Program() string { return c.root.program + " themes" }

func (c *themesCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *themesCmd) Run() error {
	for _, name := range theme.Names() {
		fmt.Fprintln(c.stdout, name)
	}
	for name := range c.root.config.Themes {
		fmt.Fprintf(c.stdout, "%s (config)\n", name)
	}
	return nil
}
