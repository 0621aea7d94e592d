package main

import (
	"os/exec"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IvanShishkin/buildid/internal/extractor"
)

// backendsCmd lists the extraction backends in the order they are tried
func (a *app) backendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List extraction backends",
		Long:  `Display the extraction backends in priority order, the tool each one runs and whether it is available.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			ext, err := extractor.New(cfg, zap.NewNop(), extractor.WithRunner(a.runner))
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Priority", "Backend", "Command", "Enabled", "Available"})
			table.SetBorder(true)
			table.SetAutoWrapText(false)

			for _, b := range ext.Backends() {
				table.Append([]string{
					strconv.Itoa(b.Priority()),
					b.Name(),
					commandLabel(b.Command()),
					yesNo(b.IsEnabled()),
					availability(b.Command()),
				})
			}
			table.Render()

			return nil
		},
	}
}

func commandLabel(command string) string {
	if command == "" {
		return "(built-in)"
	}
	return command
}

// availability resolves the backend tool on PATH
func availability(command string) string {
	if command == "" {
		return "yes"
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return "not found"
	}
	return path
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
