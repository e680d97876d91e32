package main

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bleconform/internal/bluetooth"
	"github.com/srg/bleconform/internal/conformance"
	"github.com/srg/bleconform/internal/harness"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conformance tests",
	Long: `Prints the registered conformance test names in run order.

Examples:
  # Preview which tests a filter selects
  bleconform list --filter 'pairing'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFilter string

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Only list tests whose name matches this regular expression")
}

func runList(cmd *cobra.Command, _ []string) error {
	logger, err := configureLogger(cmd, "verbose", logrus.PanicLevel)
	if err != nil {
		return err
	}

	h := harness.New(harness.WithLogger(logger))
	if err := conformance.Register(h, bluetooth.NewEnv(logger, 0)); err != nil {
		return err
	}

	var filter *regexp.Regexp
	if listFilter != "" {
		if filter, err = regexp.Compile(listFilter); err != nil {
			return fmt.Errorf("failed to compile filter: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, name := range h.Tests() {
		if filter == nil || filter.MatchString(name) {
			fmt.Fprintln(out, name)
		}
	}
	return nil
}
