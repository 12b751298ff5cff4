package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads the config file whenever it changes on disk and reports the
// result to onChange. A file that no longer validates is reported as an error
// and the previous configuration stays in effect for the caller.
//
// Only takes effect when viper was pointed at a config file.
func Watch(onChange func(*Config, error)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(reloadHandler(Load, onChange))
	viper.WatchConfig()
}

// reloadHandler filters out events that cannot change file contents.
func reloadHandler(load func() (*Config, error), onChange func(*Config, error)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(load())
	}
}
