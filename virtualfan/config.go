package virtualfan

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/mdouchement/fans"
	"go.yaml.in/yaml/v4"
)

const defaultFanCount = 4

type Config struct {
	Debug       bool            `yaml:"debug"`
	Fans        int             `yaml:"fans"`
	RPMMaximum  *fans.RPM       `yaml:"rpm_maximum"`
	Voltage     *fans.Voltage   `yaml:"voltage"`
	Current     *fans.Current   `yaml:"current"`
	Link        Link            `yaml:"link"`
	FanSettings map[string]*Fan `yaml:"fan_settings"`
}

type Link struct {
	Port     string   `yaml:"port"`
	VID      string   `yaml:"vid"` // USB auto-detection when port is empty
	PID      string   `yaml:"pid"`
	BaudRate int      `yaml:"baud_rate"`
	Interval Duration `yaml:"interval"`
}

type Fan struct {
	Select    fans.Select     `yaml:"-"`
	Label     string          `yaml:"label"`
	Control   string          `yaml:"control"`
	DutyCycle *fans.DutyCycle `yaml:"duty_cycle"`
	RPM       *fans.RPM       `yaml:"rpm"`
}

func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	var c Config
	codec := yaml.NewDecoder(f)
	err = codec.Decode(&c)
	if err != nil {
		return c, err
	}

	return c, c.normalize()
}

func (c *Config) normalize() error {
	if c.Fans == 0 {
		c.Fans = defaultFanCount
	}
	if c.Fans < 1 || c.Fans > 0xFFFF {
		return fmt.Errorf("fans: %d: must be in range [1,65535]", c.Fans)
	}

	//

	reName := regexp.MustCompile(`^fan(\d+)$`)
	for fname, fan := range c.FanSettings {
		if fan == nil {
			return fmt.Errorf("%s: no settings provided", fname)
		}

		match := reName.FindStringSubmatch(fname)
		if len(match) != 2 {
			return fmt.Errorf("%s: invalid name", fname)
		}
		id, err := strconv.ParseUint(match[1], 10, 16)
		if err != nil {
			return fmt.Errorf("%s: invalid number", fname)
		}
		if id < 1 || int(id) > c.Fans {
			return fmt.Errorf("%s: invalid number range", fname)
		}

		fan.Select = fans.Select(id) // fan1 => 1

		switch fan.Control {
		case "":
		case fans.ControlDutyCycle.String():
			if fan.DutyCycle == nil {
				return fmt.Errorf("%s: duty_cycle control without duty_cycle value", fname)
			}
		case fans.ControlRPM.String():
			if fan.RPM == nil {
				return fmt.Errorf("%s: rpm control without rpm value", fname)
			}
		default:
			return fmt.Errorf("%s: invalid control %s", fname, strconv.Quote(fan.Control))
		}
	}

	return nil
}

// NewFromConfig builds a driver and applies the fan settings through the validated setters.
func NewFromConfig(cfg Config) (*Driver, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	var opts []Option
	if cfg.RPMMaximum != nil {
		opts = append(opts, WithMaximumRPM(*cfg.RPMMaximum))
	}
	if cfg.Voltage != nil {
		opts = append(opts, WithVoltage(*cfg.Voltage))
	}
	if cfg.Current != nil {
		opts = append(opts, WithCurrent(*cfg.Current))
	}

	d := New(cfg.Fans, opts...)

	for fname, fan := range cfg.FanSettings {
		// Both values are stored, the control only tells which one is active.
		if fan.RPM != nil {
			if err := d.setRPM(fan.Select, *fan.RPM); err != nil {
				return nil, fmt.Errorf("%s: %w", fname, err)
			}
		}
		if fan.DutyCycle != nil {
			if err := d.setDutyCycle(fan.Select, *fan.DutyCycle); err != nil {
				return nil, fmt.Errorf("%s: %w", fname, err)
			}
		}

		var err error
		switch fan.Control {
		case fans.ControlDutyCycle.String():
			err = d.SetMode(fan.Select, fans.DutyCycleControl(*fan.DutyCycle))
		case fans.ControlRPM.String():
			err = d.SetMode(fan.Select, fans.RPMControl(*fan.RPM))
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
	}

	return d, nil
}

// Labels returns the configured labels indexed by select.
func (c Config) Labels() map[fans.Select]string {
	labels := make(map[fans.Select]string, len(c.FanSettings))
	for _, fan := range c.FanSettings {
		if fan == nil || fan.Select == 0 {
			continue
		}
		labels[fan.Select] = fan.Label
	}

	return labels
}

// Duration is a time.Duration written as "1s", "500ms" in YAML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	if str == "" {
		return nil
	}

	var err error
	d.Duration, err = time.ParseDuration(str)
	return err
}

// Or returns fallback when d is not strictly positive.
func (d Duration) Or(fallback time.Duration) time.Duration {
	if d.Duration <= 0 {
		return fallback
	}
	return d.Duration
}
