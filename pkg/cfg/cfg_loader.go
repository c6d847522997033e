package cfg

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// LoadConfig reads the named config file from configDir and unmarshals it
// into ptr. configSuffix selects the format ("yaml", "json", ...).
func LoadConfig(configDir, configFile, configSuffix string, ptr interface{}) error {
	viper.SetConfigName(configFile)
	viper.AddConfigPath(configDir)
	viper.SetConfigType(configSuffix)
	err := viper.ReadInConfig()
	if err != nil {
		return errors.WithMessagef(err, "read config failed, file: %s, dir: %s, type: %s", configFile, configDir, configSuffix)
	}
	err = viper.Unmarshal(ptr)
	if err != nil {
		return errors.WithMessagef(err, "unmarshal config failed, file: %s, dir: %s, type: %s", configFile, configDir, configSuffix)
	}
	return nil
}
