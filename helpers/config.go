package helpers

import "github.com/Jeffail/gabs"

// config saves the bot-config
var config *gabs.Container

// DEBUG_MODE is set at boot from the "debug" config flag
var DEBUG_MODE = false

// LoadConfig loads the config from $path into $config
func LoadConfig(path string) {
	json, err := gabs.ParseJSONFile(path)

	if err != nil {
		panic(err)
	}

	config = json
}

// GetConfig is a config getter
func GetConfig() *gabs.Container {
	return config
}

// GetConfigString reads a string value at $path
func GetConfigString(path string) string {
	return GetConfig().Path(path).Data().(string)
}

// GetConfigBool reads a bool value at $path
func GetConfigBool(path string) bool {
	return GetConfig().Path(path).Data().(bool)
}

// GetConfigInt reads a number value at $path
func GetConfigInt(path string) int {
	return int(GetConfig().Path(path).Data().(float64))
}

// GetConfigStrings reads an array of strings at $path
func GetConfigStrings(path string) []string {
	children, err := GetConfig().Path(path).Children()
	Relax(err)

	result := make([]string, 0, len(children))
	for _, child := range children {
		result = append(result, child.Data().(string))
	}
	return result
}
