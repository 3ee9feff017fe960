package showfans

import (
	"fmt"

	"github.com/mdouchement/fans"
	"github.com/mdouchement/fans/virtualfan"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var cpath string

	cmd := &cobra.Command{
		Use:   "show-fans",
		Short: "Show the initial state of the configured fans",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := virtualfan.LoadConfig(cpath)
			if err != nil {
				return err
			}

			driver, err := virtualfan.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			labels := cfg.Labels()
			for _, r := range driver.Reports() {
				control, err := driver.Mode(r.Select)
				if err != nil {
					return err
				}

				fmt.Printf("%-16s %3d%%  %5d RPM  %s\n", name(r.Select, labels[r.Select]), r.DutyCycle, r.RPM, control)
			}

			return nil
		},
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", "/etc/virtualfand/virtualfand.yml", "Configfile path")

	return cmd
}

func name(s fans.Select, label string) string {
	if label == "" {
		return fmt.Sprintf("fan%d", s)
	}
	return fmt.Sprintf("fan%d(%s)", s, label)
}
