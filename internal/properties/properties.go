package properties

import "os"

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// EarthEngineEndpoint overrides the default Earth Engine REST endpoint.
// Empty means the production API.
func EarthEngineEndpoint() string {
	return os.Getenv("EARTH_ENGINE_ENDPOINT")
}

// ChartFontPath names a TTF file used for chart text. When unset the charts
// fall back to the built-in bitmap face.
func ChartFontPath() string {
	return os.Getenv("CHART_FONT_PATH")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
