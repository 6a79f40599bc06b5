package sim

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the simulator configuration.
type Config struct {
	Sim   SimConfig   `yaml:"sim"`
	Tank  TankConfig  `yaml:"tank"`
	Pet   PetConfig   `yaml:"pet"`
	HTTP  HTTPConfig  `yaml:"http"`
	MQTT  MQTTConfig  `yaml:"mqtt"`
	Setup SetupConfig `yaml:"setup"`
}

// SimConfig controls virtual time.
type SimConfig struct {
	StartTime string        `yaml:"start_time"` // RTC time of day at boot, "HH:MM"
	Speed     float64       `yaml:"speed"`      // virtual seconds per real second
	Step      time.Duration `yaml:"step"`       // virtual time per control loop pass
	NVMFile   string        `yaml:"nvm_file"`   // persisted NVM words; empty keeps NVM in memory
	Debug     bool          `yaml:"debug"`      // route firmware debug output to the log
}

// TankConfig describes the water bowl and the food hopper.
type TankConfig struct {
	CapacityML   float64 `yaml:"capacity_ml"`
	InitialML    float64 `yaml:"initial_ml"`
	FillRateML   float64 `yaml:"fill_rate_ml"`   // mL per second with the valve open
	FoodRateG    float64 `yaml:"food_rate_g"`    // grams per second at full auger duty
	EvaporateMLH float64 `yaml:"evaporate_ml_h"` // mL lost per hour
	ValveStuck   bool    `yaml:"valve_stuck"`    // valve opens but no water flows
}

// PetConfig describes when the pet visits the bowl.
type PetConfig struct {
	VisitEvery  time.Duration `yaml:"visit_every"`
	VisitLength time.Duration `yaml:"visit_length"`
	DrinkRateML float64       `yaml:"drink_rate_ml"` // mL per second while present
}

// HTTPConfig contains the HTTP surface configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig contains telemetry publishing configuration.
type MQTTConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Broker          string        `yaml:"broker"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	ClientID        string        `yaml:"client_id"` // empty generates one
	Topic           string        `yaml:"topic"`
	Interval        time.Duration `yaml:"interval"`
	ConnectRetries  int           `yaml:"connect_retries"`
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

// SetupConfig lists console commands run once after boot.
type SetupConfig struct {
	Commands []string `yaml:"commands"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Sim: SimConfig{
			StartTime: "07:55",
			Speed:     1,
			Step:      10 * time.Millisecond,
		},
		Tank: TankConfig{
			CapacityML:   1000,
			InitialML:    250,
			FillRateML:   20,
			FoodRateG:    2,
			EvaporateMLH: 5,
		},
		Pet: PetConfig{
			VisitEvery:  2 * time.Hour,
			VisitLength: 3 * time.Minute,
			DrinkRateML: 0.5,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			Topic:           "petfeeder/status",
			Interval:        10 * time.Second,
			ConnectRetries:  5,
			BreakerFailures: 3,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if _, err := cfg.StartSeconds(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// StartSeconds returns the configured boot time as seconds after midnight.
func (c *Config) StartSeconds() (uint32, error) {
	t, err := time.Parse("15:04", c.Sim.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start_time %q: %w", c.Sim.StartTime, err)
	}
	return uint32(t.Hour()*3600 + t.Minute()*60), nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Sim.StartTime == "" {
		c.Sim.StartTime = def.Sim.StartTime
	}
	if c.Sim.Speed <= 0 {
		c.Sim.Speed = def.Sim.Speed
	}
	if c.Sim.Step <= 0 {
		c.Sim.Step = def.Sim.Step
	}

	if c.Tank.CapacityML == 0 {
		c.Tank.CapacityML = def.Tank.CapacityML
	}
	if c.Tank.FillRateML == 0 {
		c.Tank.FillRateML = def.Tank.FillRateML
	}
	if c.Tank.FoodRateG == 0 {
		c.Tank.FoodRateG = def.Tank.FoodRateG
	}

	if c.Pet.VisitEvery == 0 {
		c.Pet.VisitEvery = def.Pet.VisitEvery
	}
	if c.Pet.VisitLength == 0 {
		c.Pet.VisitLength = def.Pet.VisitLength
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = def.MQTT.Broker
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.Interval == 0 {
		c.MQTT.Interval = def.MQTT.Interval
	}
	if c.MQTT.ConnectRetries == 0 {
		c.MQTT.ConnectRetries = def.MQTT.ConnectRetries
	}
	if c.MQTT.BreakerFailures == 0 {
		c.MQTT.BreakerFailures = def.MQTT.BreakerFailures
	}
	if c.MQTT.BreakerTimeout == 0 {
		c.MQTT.BreakerTimeout = def.MQTT.BreakerTimeout
	}
}
