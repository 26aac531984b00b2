package config

// FileValues mirrors the TOML config file. Every field is optional.
//
//	app_name = "Sub Finder"
//	log_level = "info"
//
//	[api]
//	base_url = "https://subs.example.com"
//	timeout = "10s"
//
//	[session]
//	warning_window = "3m"
//	refresh_throttle = "30s"
//	tick_interval = "1s"
//
//	[storage]
//	driver = "sqlite"
//	path = "/home/me/.subfinder/session.db"
type FileValues struct {
	AppName  string `toml:"app_name"`
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	API struct {
		BaseURL string `toml:"base_url"`
		Timeout string `toml:"timeout"`
	} `toml:"api"`

	Session struct {
		WarningWindow   string `toml:"warning_window"`
		RefreshThrottle string `toml:"refresh_throttle"`
		TickInterval    string `toml:"tick_interval"`
	} `toml:"session"`

	Storage struct {
		Driver     string `toml:"driver"`
		Path       string `toml:"path"`
		Passphrase string `toml:"passphrase"`
	} `toml:"storage"`
}
