package config

const (
	defaultDataDir        = "~/.local/share/fxchain"
	defaultLogDir         = "~/.local/share/fxchain/logs"
	defaultAnalyzerBinary = "plughost"
	defaultListTimeout    = 30
	defaultPlayerBinary   = "ffplay"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// defaultBundleSuffixes lists the plugin container formats discovery
// recognizes. A directory whose name ends in one of these is a bundle.
var defaultBundleSuffixes = []string{".vst3", ".vst", ".component", ".aaxplugin", ".lv2"}

var defaultDiscoveryRoots = []string{
	"~/.vst3",
	"/usr/lib/vst3",
	"/usr/local/lib/vst3",
	"/Library/Audio/Plug-Ins/VST3",
	"/Library/Audio/Plug-Ins/Components",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Analyzer: Analyzer{
			Binary:      defaultAnalyzerBinary,
			ListTimeout: defaultListTimeout,
		},
		Player: Player{
			Binary: defaultPlayerBinary,
		},
		Discovery: Discovery{
			Roots:          append([]string(nil), defaultDiscoveryRoots...),
			BundleSuffixes: append([]string(nil), defaultBundleSuffixes...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
