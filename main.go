// Command tokencontextmenu runs the weapon menu inside a small ebiten
// demo host: a grid scene with a controllable hero token and targets.
package main

import (
	"fmt"
	"os"

	"github.com/leonelquinteros/gotext"
	"github.com/spf13/cobra"

	"tokencontextmenu/pkg/engine/logging"
	"tokencontextmenu/pkg/host"
	"tokencontextmenu/pkg/menu"
	"tokencontextmenu/pkg/menu/settings"
)

var (
	flagConfigDir string
	flagDebug     bool
	flagWidth     int
	flagHeight    int
)

var rootCmd = &cobra.Command{
	Use:   "tokencontextmenu",
	Short: "Token weapon menu demo",
	Long: "Runs the context-sensitive token weapon menu inside a demo " +
		"tabletop scene. Left-click the hero to open the menu; drag to " +
		"move; press H to toggle the token HUD.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagConfigDir, "config-dir", "", "directory holding tokencontextmenu.json settings")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&flagWidth, "width", 1280, "window width")
	rootCmd.Flags().IntVar(&flagHeight, "height", 800, "window height")
}

func run() error {
	logging.SetDebug(flagDebug)
	gotext.Configure("locales", "en_US", "default")

	if err := settings.Register(flagConfigDir); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if flagDebug {
		settings.Set(settings.DebugMode, true)
	}

	h := host.New(flagWidth, flagHeight)
	h.PopulateDemoScene()

	menu.Init(h, host.RollAdapter{})
	defer menu.Shutdown()

	return h.Run("Token Weapon Menu")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
