// Package settings is the module's settings store, backed by viper.
// Every key is registered with a default; Set broadcasts per-key change
// callbacks so running components react without a restart.
package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"

	"tokencontextmenu/pkg/engine/logging"
)

// Setting keys.
const (
	AutoRemoveTargets        = "autoRemoveTargets"
	ShowWeaponMenuOnSelection = "showWeaponMenuOnSelection"
	ReopenMenuAfterDrag      = "reopenMenuAfterDrag"
	DetailedWeaponTooltips   = "detailedWeaponTooltips"
	WeaponMenuItemsPerRow    = "weaponMenuItemsPerRow"
	WeaponMenuIconScale      = "weaponMenuIconScale"
	ShowEquipmentBadges      = "showEquipmentBadges"
	EquipmentBadgeColor      = "equipmentBadgeColor"
	EquipmentBadgeBgColor    = "equipmentBadgeBgColor"
	UseEquipmentStateColors  = "useEquipmentStateColors"
	EquipmentColorActive     = "equipmentColorActive"
	EquipmentColorCarried    = "equipmentColorCarried"
	EquipmentModeZoom        = "equipmentModeZoom"
	EquipmentModeZoomLevel   = "equipmentModeZoomLevel"
	EquipmentModeZoomDuration = "equipmentModeZoomDuration"
	EquipmentModeBlur        = "equipmentModeBlur"
	EquipmentModeBlurStrength = "equipmentModeBlurStrength"
	EquipmentModeBlurQuality = "equipmentModeBlurQuality"
	DebugMode                = "debugMode"
)

const configName = "tokencontextmenu"

var (
	mu        sync.Mutex
	nextSubID int
	subs      = make(map[string]map[int]func(value any))
	log       = logging.For("settings")
)

// Register installs every default and, when configDir is non-empty,
// overlays values from <configDir>/tokencontextmenu.json. A missing
// config file is not an error; a malformed one is.
func Register(configDir string) error {
	viper.SetDefault(AutoRemoveTargets, true)
	viper.SetDefault(ShowWeaponMenuOnSelection, true)
	viper.SetDefault(ReopenMenuAfterDrag, true)
	viper.SetDefault(DetailedWeaponTooltips, true)
	viper.SetDefault(WeaponMenuItemsPerRow, 4)
	viper.SetDefault(WeaponMenuIconScale, 0.5)
	viper.SetDefault(ShowEquipmentBadges, true)
	viper.SetDefault(EquipmentBadgeColor, "#ffffff")
	viper.SetDefault(EquipmentBadgeBgColor, "#333333")
	viper.SetDefault(UseEquipmentStateColors, false)
	viper.SetDefault(EquipmentColorActive, "#4caf50")
	viper.SetDefault(EquipmentColorCarried, "#9e9e9e")
	viper.SetDefault(EquipmentModeZoom, false)
	viper.SetDefault(EquipmentModeZoomLevel, 2.5)
	viper.SetDefault(EquipmentModeZoomDuration, 750)
	viper.SetDefault(EquipmentModeBlur, true)
	viper.SetDefault(EquipmentModeBlurStrength, 8)
	viper.SetDefault(EquipmentModeBlurQuality, 4)
	viper.SetDefault(DebugMode, false)

	if configDir == "" {
		return nil
	}
	viper.SetConfigName(configName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading settings file: %w", err)
	}
	return nil
}

// GetBool returns a boolean setting.
func GetBool(key string) bool { return viper.GetBool(key) }

// GetInt returns an integer setting.
func GetInt(key string) int { return viper.GetInt(key) }

// GetFloat returns a float setting.
func GetFloat(key string) float64 { return viper.GetFloat64(key) }

// GetString returns a string setting.
func GetString(key string) string { return viper.GetString(key) }

// ItemsPerRow returns weaponMenuItemsPerRow clamped to its 2..8 range.
func ItemsPerRow() int {
	n := GetInt(WeaponMenuItemsPerRow)
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}

// IconScale returns weaponMenuIconScale clamped to its 0.3..1.2 range.
func IconScale() float64 {
	s := GetFloat(WeaponMenuIconScale)
	if s < 0.3 {
		s = 0.3
	}
	if s > 1.2 {
		s = 1.2
	}
	return s
}

// Set stores a value and notifies every subscriber for the key.
func Set(key string, value any) {
	viper.Set(key, value)
	log.Debug().Str("key", key).Interface("value", value).Msg("setting changed")
	mu.Lock()
	var fns []func(any)
	for _, fn := range subs[key] {
		fns = append(fns, fn)
	}
	mu.Unlock()
	for _, fn := range fns {
		fn(value)
	}
}

// OnChange subscribes to changes of the given key and returns a
// subscription id for Unsubscribe.
func OnChange(key string, fn func(value any)) int {
	mu.Lock()
	defer mu.Unlock()
	nextSubID++
	if subs[key] == nil {
		subs[key] = make(map[int]func(any))
	}
	subs[key][nextSubID] = fn
	return nextSubID
}

// Unsubscribe removes a change subscription.
func Unsubscribe(key string, id int) {
	mu.Lock()
	defer mu.Unlock()
	if m := subs[key]; m != nil {
		delete(m, id)
	}
}
