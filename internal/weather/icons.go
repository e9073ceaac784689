package weather

// Icon is a symbol name from the Font Awesome solid set.
type Icon string

const (
	IconSun           Icon = "sun"
	IconMoon          Icon = "moon"
	IconCloudSun      Icon = "cloud-sun"
	IconCloudMoon     Icon = "cloud-moon"
	IconCloud         Icon = "cloud"
	IconCloudRain     Icon = "cloud-rain"
	IconCloudSunRain  Icon = "cloud-sun-rain"
	IconCloudMoonRain Icon = "cloud-moon-rain"
	IconBolt          Icon = "bolt"
	IconSnowflake     Icon = "snowflake"
	IconSmog          Icon = "smog"
)

var iconsByCode = map[string]Icon{
	"01d": IconSun,
	"01n": IconMoon,
	"02d": IconCloudSun,
	"02n": IconCloudMoon,
	"03d": IconCloud,
	"03n": IconCloud,
	"04d": IconCloud,
	"04n": IconCloud,
	"09d": IconCloudRain,
	"09n": IconCloudRain,
	"10d": IconCloudSunRain,
	"10n": IconCloudMoonRain,
	"11d": IconBolt,
	"11n": IconBolt,
	"13d": IconSnowflake,
	"13n": IconSnowflake,
	"50d": IconSmog,
	"50n": IconSmog,
}

// ResolveIcon maps a provider condition code to its symbol. Unknown codes
// fall back to IconCloud.
func ResolveIcon(code string) Icon {
	if icon, ok := iconsByCode[code]; ok {
		return icon
	}
	return IconCloud
}

// Glyph is a single-character stand-in for terminals without icon fonts.
func (i Icon) Glyph() string {
	switch i {
	case IconSun:
		return "☀"
	case IconMoon:
		return "☾"
	case IconCloudSun, IconCloudMoon:
		return "⛅"
	case IconCloudRain, IconCloudSunRain, IconCloudMoonRain:
		return "☂"
	case IconBolt:
		return "⚡"
	case IconSnowflake:
		return "❄"
	case IconSmog:
		return "≋"
	default:
		return "☁"
	}
}
