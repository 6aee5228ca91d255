package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/votebridge/votebridge/internal/serialport"
)

// NewPortsCommand creates the ports command.
func NewPortsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports and flag likely voting devices",
		Long: `List every serial port on this host. Ports whose name or USB product
description matches a known device signature (CH340, FTDI, Arduino, ...)
are flagged; "run" with port "auto" picks the first flagged port.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPorts(rootOpts, cmd)
		},
	}
	return cmd
}

func listPorts(opts *RootOptions, cmd *cobra.Command) error {
	ports, err := serialport.List()
	if err != nil {
		return WrapExitError(ExitFailure, "could not enumerate serial ports", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(ports, func(w io.Writer) {
		if len(ports) == 0 {
			fmt.Fprintln(w, "No serial ports found.")
			return
		}
		for _, p := range ports {
			mark := " "
			if p.Likely {
				mark = "*"
			}
			if p.Description != "" {
				fmt.Fprintf(w, "%s %s: %s\n", mark, p.Device, p.Description)
			} else {
				fmt.Fprintf(w, "%s %s\n", mark, p.Device)
			}
		}
		fmt.Fprintln(w, "\n* likely voting device")
	})
}
