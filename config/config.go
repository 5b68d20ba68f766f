package config

import (
	"path/filepath"
	"time"

	coretypes "github.com/projecteru2/core/types"

	"github.com/projecteru2/ovxview/utils"
)

// LayoutParams are the node sizes, in inches, the layout service uses.
type LayoutParams struct {
	FixedSwitchWidth          float64 `json:"fixed_switch_width" mapstructure:"fixed_switch_width"`
	RepositionableSwitchWidth float64 `json:"repositionable_switch_width" mapstructure:"repositionable_switch_width"`
	HostWidth                 float64 `json:"host_width" mapstructure:"host_width"`
}

// Config holds global ovxview configuration.
type Config struct {
	// Backend is the base URL of the controller's REST proxy. It also serves
	// layoutTopology.
	// Env: OVXVIEW_BACKEND. Default: http://localhost:5000/.
	Backend string `json:"backend" mapstructure:"backend"`
	// Listen is the dashboard API address.
	// Env: OVXVIEW_LISTEN. Default: :8080.
	Listen string `json:"listen" mapstructure:"listen"`
	// RootDir holds the cached physical link set.
	// Env: OVXVIEW_ROOT_DIR. Default: /var/lib/ovxview.
	RootDir string `json:"root_dir" mapstructure:"root_dir"`
	// GeoFile is a JSON or YAML file with core switch placement and virtual
	// network names. Empty means the built-in backbone.
	// Env: OVXVIEW_GEO_FILE.
	GeoFile string `json:"geo_file" mapstructure:"geo_file"`
	// RetryInterval is how long a sync cycle may run before it is restarted.
	// Default: 10s.
	RetryInterval time.Duration `json:"retry_interval" mapstructure:"retry_interval"`
	// UpdateInterval is the pause between two successful cycles.
	// Default: 1s.
	UpdateInterval time.Duration `json:"update_interval" mapstructure:"update_interval"`
	// NoPolling runs exactly one cycle and never reschedules.
	NoPolling bool `json:"no_polling" mapstructure:"no_polling"`
	// PingPendingCycles bounds how long a ping start is shown pending.
	// Default: 9.
	PingPendingCycles int `json:"ping_pending_cycles" mapstructure:"ping_pending_cycles"`
	// HTTPTimeout applies to every backend call. Default: 30s.
	HTTPTimeout time.Duration `json:"http_timeout" mapstructure:"http_timeout"`
	// PoolSize bounds concurrent bulk fetches (flowtables of all switches).
	// Defaults to runtime.NumCPU() if zero.
	PoolSize int `json:"pool_size" mapstructure:"pool_size"`
	// LayoutCacheTTL keeps rendered layouts of identical topologies.
	// Zero disables the cache. Default: 5m.
	LayoutCacheTTL time.Duration `json:"layout_cache_ttl" mapstructure:"layout_cache_ttl"`
	// MapWidth and MapHeight size the backbone map the core switches are
	// projected on, in pixels. Default: 960x500.
	MapWidth  float64 `json:"map_width" mapstructure:"map_width"`
	MapHeight float64 `json:"map_height" mapstructure:"map_height"`
	// PhysicalLayout and VirtualLayout are passed to layoutTopology.
	PhysicalLayout LayoutParams `json:"physical_layout" mapstructure:"physical_layout"`
	VirtualLayout  LayoutParams `json:"virtual_layout" mapstructure:"virtual_layout"`
	// Skin is the display variant reported to viewers.
	Skin string `json:"skin" mapstructure:"skin"`
	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration before files, env and flags apply.
func DefaultConfig() *Config {
	return &Config{
		Backend:           "http://localhost:5000/",
		Listen:            ":8080",
		RootDir:           "/var/lib/ovxview",
		RetryInterval:     10 * time.Second, //nolint:mnd
		UpdateInterval:    time.Second,
		PingPendingCycles: 9, //nolint:mnd
		HTTPTimeout:       utils.HTTPTimeout,
		LayoutCacheTTL:    5 * time.Minute, //nolint:mnd
		MapWidth:          960,             //nolint:mnd
		MapHeight:         500,             //nolint:mnd
		PhysicalLayout:    LayoutParams{FixedSwitchWidth: .5, RepositionableSwitchWidth: .25, HostWidth: .5},
		VirtualLayout:     LayoutParams{FixedSwitchWidth: .5, RepositionableSwitchWidth: .5, HostWidth: .5},
		Skin:              "default",
		Log:               coretypes.ServerLogConfig{Level: "info"},
	}
}

// EnsureDirs creates the directories the daemon writes to.
func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.dbDir())
}

func (c *Config) dbDir() string { return filepath.Join(c.RootDir, "db") }

// LinkCacheFile and LinkCacheLock are the cached physical link store paths.
func (c *Config) LinkCacheFile() string { return filepath.Join(c.dbDir(), "links.json") }
func (c *Config) LinkCacheLock() string { return filepath.Join(c.dbDir(), "links.lock") }
