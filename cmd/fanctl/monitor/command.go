package monitor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdouchement/fans/link"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	var (
		port     string
		baudrate int
		input    string
		delay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the TUI monitor display of received fan reports",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			var l *link.Link
			switch {
			case input != "":
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				l = link.New(input, f)
			case port != "":
				var err error
				l, err = link.Open(port, baudrate)
				if err != nil {
					return err
				}
			default:
				return errors.New("one of --port or --input is required")
			}
			defer l.Close()

			m := newTUI(l.Name())
			tui := tea.NewProgram(m, tea.WithAltScreen())

			go func() {
				for {
					r, err := l.Receive()
					if errors.Is(err, io.EOF) {
						return // End of capture, keep the last state displayed.
					}
					if err != nil {
						tui.Quit()
						fmt.Println("ERR:", err)
						os.Exit(1)
					}

					tui.Send(r)

					if input != "" {
						time.Sleep(delay)
					}
				}
			}()

			_, err := tui.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port receiving the frames")
	cmd.Flags().IntVarP(&baudrate, "baudrate", "b", link.DefaultBaudRate, "Serial port baud rate")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Replay a capture file")
	cmd.Flags().DurationVarP(&delay, "delay", "", 100*time.Millisecond, "Delay between replayed frames")

	return cmd
}
