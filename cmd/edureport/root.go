package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alnah/go-edureport/internal/api"
	"github.com/alnah/go-edureport/internal/assets"
	"github.com/alnah/go-edureport/internal/config"
)

// ErrUsage marks invalid flag combinations.
var ErrUsage = errors.New("invalid usage")

// envPrefix namespaces environment overrides, e.g. EDUREPORT_API_BASEURL.
const envPrefix = "EDUREPORT"

// app carries state shared by all commands of one invocation.
type app struct {
	env    *Environment
	v      *viper.Viper
	common commonFlags
}

func newRootCmd(env *Environment) *cobra.Command {
	a := &app{env: env, v: newViper()}

	root := &cobra.Command{
		Use:   "edureport",
		Short: "Export educational recommendation reports as PDF",
		Long: `edureport builds a PDF report of a student's learning recommendations.

The report has a header with the student profile, an image of the
recommendations, an image of the analytics summary, and page numbers.
Regions come from a live recommender page (page.url) or are rendered
from the prediction and analytics services.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	a.common.register(root.PersistentFlags())
	a.bind("api.baseURL", root.PersistentFlags(), "api-url")
	a.bind("api.timeout", root.PersistentFlags(), "timeout")

	root.AddCommand(
		newExportCmd(a),
		newRecommendCmd(a),
		newModelInfoCmd(a),
		newTrainCmd(a),
		newSummaryCmd(a),
		newHistoryCmd(a),
		newDoctorCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// bind connects a flag to a config key. The flag wins over the environment
// only when given on the command line.
func (a *app) bind(key string, fs flagLookup, name string) {
	if f := fs.Lookup(name); f != nil {
		_ = a.v.BindPFlag(key, f)
	}
}

// setup loads the config file, applies environment and flag overrides and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.common.verbose && a.common.quiet {
		return fmt.Errorf("%w: --verbose and --quiet are mutually exclusive", ErrUsage)
	}
	a.env.Logger = newLogger(a.env.Stderr, a.common.verbose, a.common.quiet)

	cfg := config.DefaultConfig()
	if a.common.config != "" {
		loaded, err := config.LoadConfig(a.common.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyOverrides(a.v, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.env.Config = cfg

	a.env.Logger.Debug().
		Str("command", cmd.Name()).
		Str("api", cfg.API.BaseURL).
		Str("page", cfg.Page.URL).
		Msg("configuration loaded")
	return nil
}

// client builds the collaborator client from the loaded config.
func (a *app) client() (*api.Client, error) {
	cfg := a.env.Config
	return api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.Retries),
		api.WithLogger(a.env.Logger),
	)
}

// assetLoader returns the injected loader or resolves report.assetsPath.
func (a *app) assetLoader() (assets.AssetLoader, error) {
	if a.env.AssetLoader != nil {
		return a.env.AssetLoader, nil
	}
	return assets.NewAssetResolver(a.env.Config.Report.AssetsPath)
}

// networkFailure shows a banner for unreachable collaborators. Other errors
// are left to the caller.
func (a *app) networkFailure(err error, message string) {
	if !errors.Is(err, api.ErrNetwork) || a.env.Banner == nil {
		return
	}
	a.env.Banner.Show(message)
}
