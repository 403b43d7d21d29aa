package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagSelection     = flag.Bool("selection", false, "Limit export to selected nodes")
	flagAllLayers     = flag.Bool("all-layers", false, "Export nodes outside render layers")
	flagNoTriangulate = flag.Bool("no-triangulate", false, "Keep polygons as they are")
	flagDoubleSided   = flag.Bool("double-sided", false, "Write the two-sided surface flag")
	flagEncoding      = flag.String("encoding", "", "Output encoding (utf-8, latin1, windows-1252, euc-kr)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSelection {
		cfg.Export.LimitToSelection = true
	}
	if *flagAllLayers {
		cfg.Export.LimitToRenderLayers = false
	}
	if *flagNoTriangulate {
		cfg.Export.Triangulate = false
	}
	if *flagDoubleSided {
		cfg.Export.DoubleSidedFlags = true
	}
	if *flagEncoding != "" {
		cfg.Export.Encoding = *flagEncoding
	}
}
