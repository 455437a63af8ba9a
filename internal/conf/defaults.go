// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "SilentCam")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/silentcam.log")

	viper.SetDefault("camera.facing", "environment")
	viper.SetDefault("camera.pixelratio", 1.0)
	viper.SetDefault("camera.source", "")

	viper.SetDefault("capture.tier", "normal")
	viper.SetDefault("capture.sharpen", false)

	viper.SetDefault("thumbnail.maxwidth", 200)
	viper.SetDefault("thumbnail.maxheight", 200)
	viper.SetDefault("thumbnail.quality", 0.7)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "photos.db")

	viper.SetDefault("output.export.path", "export/")
}
