package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"time"

	showfans "github.com/mdouchement/fans/cmd/virtualfand/show_fans"
	"github.com/mdouchement/fans/link"
	"github.com/mdouchement/fans/virtualfan"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath  string
	output string
	rounds int
)

func main() {
	cmd := &cobra.Command{
		Use:     "virtualfand",
		Short:   "Publish the reports of simulated fans",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		RunE:    daemon,
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", "/etc/virtualfand/virtualfand.yml", "Configfile path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write frames to this capture file instead of the serial port")
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 0, "Stop after this number of publications (0 means forever)")
	cmd.AddCommand(showfans.Command())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for virtualfand",
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

func daemon(_ *cobra.Command, args []string) error {
	cfg, err := virtualfan.LoadConfig(cpath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	h := logger.NewSlogTextHandler(os.Stdout, &logger.SlogTextOption{
		Level:            level,
		ForceColors:      true,
		ForceFormatting:  true,
		PrefixRE:         regexp.MustCompile(`^(\[.*?\])\s`),
		DisableTimestamp: true, // Provided by journalctl
	})
	log := logger.WrapSlogHandler(h)
	ctx := logger.WithLogger(context.Background(), log)

	log.Infof("virtualfand version %s", version)

	driver, err := virtualfan.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	driver.SetLogger(log)
	log.Infof("Virtual driver with %d fans - RPM maximum: %d", driver.Count(), driver.MaximumRPM())
	driver.DumpInfo()

	l, err := openLink(cfg)
	if err != nil {
		return fmt.Errorf("link: %w", err)
	}
	defer l.Close()
	if cfg.Debug {
		l.SetLogger(log)
	}
	log.Infof("Publishing on `%s`", l.Name())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	publisher := link.NewPublisher(driver, l, cfg.Link.Interval.Or(time.Second)).Limit(rounds)
	publisher.SetLogger(log)

	err = publisher.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("Gracefully shutdown")
	return nil
}

func openLink(cfg virtualfan.Config) (*link.Link, error) {
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		return link.New(output, f), nil
	}

	if cfg.Link.Port == "" {
		if cfg.Link.VID == "" {
			return nil, fmt.Errorf("no port configured: %w", link.ErrNotFound)
		}
		return link.OpenAuto(cfg.Link.VID, cfg.Link.PID, cfg.Link.BaudRate)
	}

	return link.Open(cfg.Link.Port, cfg.Link.BaudRate)
}
