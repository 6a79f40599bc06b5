package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	data := `
sim:
  start_time: "06:30"
  speed: 60
tank:
  initial_ml: 400
mqtt:
  enabled: true
setup:
  commands:
    - feed 0 10 80 7 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.Sim.Speed)
	assert.Equal(t, 10*time.Millisecond, cfg.Sim.Step)
	assert.Equal(t, 400.0, cfg.Tank.InitialML)
	assert.Equal(t, 1000.0, cfg.Tank.CapacityML)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "petfeeder/status", cfg.MQTT.Topic)
	assert.Equal(t, []string{"feed 0 10 80 7 0"}, cfg.Setup.Commands)

	secs, err := cfg.StartSeconds()
	require.NoError(t, err)
	assert.Equal(t, uint32(6*3600+30*60), secs)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sim: [unclosed"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	clock := filepath.Join(dir, "clock.yaml")
	require.NoError(t, os.WriteFile(clock, []byte("sim:\n  start_time: \"25:00\"\n"), 0644))
	_, err = Load(clock)
	assert.ErrorContains(t, err, "invalid start_time")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	cfg := Default()
	cfg.Sim.StartTime = "12:00"
	cfg.Pet.VisitEvery = 45 * time.Minute
	cfg.Setup.Commands = []string{"fill motion"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
