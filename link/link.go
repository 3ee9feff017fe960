// Package link carries fan reports as fixed-size frames over a serial port or any byte stream.
package link

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mdouchement/fans"
	"github.com/mdouchement/logger"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	DefaultBaudRate = 115200
	readTimeout     = 200 * time.Millisecond
)

var ErrNotFound = errors.New("device not found/plugged")

// A Link reads and writes fans.ReportLength bytes frames.
// It is not safe for concurrent use.
type Link struct {
	name string
	rwc  io.ReadWriteCloser
	log  logger.Logger
	wbuf []byte
	rbuf []byte
}

// New wraps an already opened stream such as a capture file or a pipe.
func New(name string, rwc io.ReadWriteCloser) *Link {
	return &Link{
		name: name,
		rwc:  rwc,
		wbuf: make([]byte, fans.ReportLength),
		rbuf: make([]byte, fans.ReportLength),
	}
}

// OpenAuto opens the first USB serial port matching the given VID and PID.
func OpenAuto(vid, pid string, baudrate int) (*Link, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	for _, p := range ports {
		if p.IsUSB && p.VID == vid && p.PID == pid {
			return Open(p.Name, baudrate)
		}
	}

	return nil, ErrNotFound
}

func Open(port string, baudrate int) (*Link, error) {
	if baudrate <= 0 {
		baudrate = DefaultBaudRate
	}

	sp, err := serial.Open(port, &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", port, err)
	}

	if err = sp.SetReadTimeout(readTimeout); err != nil {
		sp.Close()
		return nil, fmt.Errorf("%s: %w", port, err)
	}

	if err = sp.ResetInputBuffer(); err != nil {
		sp.Close()
		return nil, fmt.Errorf("%s: %w", port, err)
	}

	if err = sp.ResetOutputBuffer(); err != nil {
		sp.Close()
		return nil, fmt.Errorf("%s: %w", port, err)
	}

	return New(port, sp), nil
}

func (l *Link) SetLogger(log logger.Logger) {
	l.log = log
}

func (l *Link) Name() string {
	return l.name
}

func (l *Link) Close() error {
	return l.rwc.Close()
}

// Send writes one report frame.
func (l *Link) Send(r fans.Report) error {
	if err := r.Encode(l.wbuf); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	n, err := l.rwc.Write(l.wbuf)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if n != len(l.wbuf) {
		return fmt.Errorf("send: %w", io.ErrShortWrite)
	}

	if l.log != nil {
		l.log.Debug(fmt.Sprintf("Sent fan%d frame % X", r.Select, l.wbuf))
	}

	return nil
}

// Receive reads one report frame.
// It returns io.EOF at a frame boundary and io.ErrUnexpectedEOF on a truncated frame.
func (l *Link) Receive() (fans.Report, error) {
	// A serial port in timeout returns (0, nil) which io.ReadFull retries.
	_, err := io.ReadFull(l.rwc, l.rbuf)
	if err != nil {
		return fans.Report{}, err
	}

	if l.log != nil {
		l.log.Debug(fmt.Sprintf("Received frame % X", l.rbuf))
	}

	r, err := fans.DecodeReport(l.rbuf)
	if err != nil {
		return fans.Report{}, fmt.Errorf("receive: %w", err)
	}

	return r, nil
}
