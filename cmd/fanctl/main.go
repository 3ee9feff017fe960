package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/mdouchement/fans/cmd/fanctl/codec"
	"github.com/mdouchement/fans/cmd/fanctl/monitor"
	"github.com/mdouchement/fans/cmd/fanctl/plot"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	cmd := &cobra.Command{
		Use:     "fanctl",
		Short:   "A ctl used to inspect fan reports",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
	}
	cmd.AddCommand(codec.EncodeCommand())
	cmd.AddCommand(codec.DecodeCommand())
	cmd.AddCommand(codec.SchemaCommand())
	cmd.AddCommand(monitor.Command())
	cmd.AddCommand(plot.Command())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for fanctl",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
