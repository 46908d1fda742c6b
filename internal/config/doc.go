// Package config loads and validates the fxchain configuration file.
//
// Configuration lives in a TOML file, by default at
// ~/.config/fxchain/config.toml, with a project-local fxchain.toml as a
// fallback. Loading applies defaults, expands ~ in paths, and validates the
// result. A commented sample file is embedded for `fxchain config init`.
package config
