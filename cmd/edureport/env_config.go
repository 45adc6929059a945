package main

import (
	"github.com/spf13/viper"

	"github.com/alnah/go-edureport/internal/config"
)

// applyOverrides copies every key set in the environment or on the command
// line onto cfg. Keys mirror the YAML paths of the config file.
func applyOverrides(v *viper.Viper, cfg *config.Config) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("api.baseURL", &cfg.API.BaseURL)
	if v.IsSet("api.timeout") {
		if d := v.GetDuration("api.timeout"); d > 0 {
			cfg.API.Timeout = d
		}
	}
	if v.IsSet("api.retries") {
		cfg.API.Retries = v.GetInt("api.retries")
	}

	str("browser.bin", &cfg.Browser.Bin)
	boolean("browser.noSandbox", &cfg.Browser.NoSandbox)
	str("browser.remoteURL", &cfg.Browser.RemoteURL)
	if v.IsSet("browser.timeout") {
		if d := v.GetDuration("browser.timeout"); d > 0 {
			cfg.Browser.Timeout = d
		}
	}

	str("page.url", &cfg.Page.URL)
	str("output.dir", &cfg.Output.Dir)

	str("report.dateFormat", &cfg.Report.DateFormat)
	str("report.fontFile", &cfg.Report.FontFile)
	boolean("report.verify", &cfg.Report.Verify)
	str("report.templates", &cfg.Report.Templates)
	str("report.style", &cfg.Report.Style)
	str("report.assetsPath", &cfg.Report.AssetsPath)

	boolean("history.enabled", &cfg.History.Enabled)
	str("history.path", &cfg.History.Path)
}
