package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Watchlist   string            `yaml:"watchlist"`
	DebugDir    string            `yaml:"debug_dir"`
	Trading     Trading           `yaml:"trading"`
	Notify      Notify            `yaml:"notify"`
	PlatformRef PlatformReference `yaml:"platform"`
}

// Trading carries the knobs of the decision pipeline. Zero values are
// replaced with the defaults the strategy was tuned with.
type Trading struct {
	CycleInterval time.Duration `yaml:"cycle_interval"`
	Cooldown      time.Duration `yaml:"cooldown"`
	Pace          time.Duration `yaml:"pace"`
	SettleDelay   time.Duration `yaml:"settle_delay"`

	RiskPerTrade  float64 `yaml:"risk_per_trade"`
	AllocationCap float64 `yaml:"allocation_cap"`
	BuyDip        float64 `yaml:"buy_dip"`
	SellLoss      float64 `yaml:"sell_loss"`
	SellProfit    float64 `yaml:"sell_profit"`
	Oversold      float64 `yaml:"oversold"`
	Overbought    float64 `yaml:"overbought"`
}

type Notify struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	d := yaml.NewDecoder(r)
	if err := d.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.Trading.applyDefaults()
	return &cfg, nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// applyDefaults fills zero-valued knobs. A zero in the file is treated as
// unset, so explicit zero overrides (e.g. oversold: 0 or a zero pace) are not
// expressible; none of the knobs has a meaningful zero in this strategy.
func (t *Trading) applyDefaults() {
	if t.CycleInterval == 0 {
		t.CycleInterval = 300 * time.Second
	}
	if t.Cooldown == 0 {
		t.Cooldown = 60 * time.Second
	}
	if t.Pace == 0 {
		t.Pace = 2500 * time.Millisecond
	}
	if t.SettleDelay == 0 {
		t.SettleDelay = 2500 * time.Millisecond
	}
	if t.RiskPerTrade == 0 {
		t.RiskPerTrade = 0.01
	}
	if t.AllocationCap == 0 {
		t.AllocationCap = 0.20
	}
	if t.BuyDip == 0 {
		t.BuyDip = 0.15
	}
	if t.SellLoss == 0 {
		t.SellLoss = 0.07
	}
	if t.SellProfit == 0 {
		t.SellProfit = 0.25
	}
	if t.Oversold == 0 {
		t.Oversold = 30
	}
	if t.Overbought == 0 {
		t.Overbought = 70
	}
}

// platform configs

type Kraken struct {
	BaseURL string `yaml:"base_url"`
}

type Paper struct {
	Balance    float64 `yaml:"balance"`
	Commission float64 `yaml:"commission"`
	DataURL    string  `yaml:"data_url"`
}

type Alpaca struct {
	BaseUrl  string  `yaml:"base_url"`
	ApiKey   string  `yaml:"api_key"`
	Secret   string  `yaml:"secret"`
	MinOrder float64 `yaml:"min_order"`
}

type Platform interface{}

type PlatformReference struct {
	Platform Platform
}

func (w *PlatformReference) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) == 0 {
		return nil
	}

	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return errors.New("invalid platform yaml format")
	}

	key := value.Content[0].Value
	switch key {
	case "kraken":
		var kraken Kraken
		if err := value.Content[1].Decode(&kraken); err != nil {
			return fmt.Errorf("failed parsing kraken platform config: %w", err)
		}
		w.Platform = kraken
	case "paper":
		var paper Paper
		if err := value.Content[1].Decode(&paper); err != nil {
			return fmt.Errorf("failed parsing paper platform config: %w", err)
		}
		w.Platform = paper
	case "alpaca":
		var alpaca Alpaca
		if err := value.Content[1].Decode(&alpaca); err != nil {
			return fmt.Errorf("failed parsing Alpaca platform config: %w", err)
		}
		w.Platform = alpaca
	default:
		return fmt.Errorf("unknown platform type: %s", key)
	}

	return nil
}
