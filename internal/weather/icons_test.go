package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIconKnownCodes(t *testing.T) {
	testCases := []struct {
		code     string
		expected Icon
	}{
		{"01d", IconSun},
		{"01n", IconMoon},
		{"02d", IconCloudSun},
		{"02n", IconCloudMoon},
		{"03d", IconCloud},
		{"03n", IconCloud},
		{"04d", IconCloud},
		{"04n", IconCloud},
		{"09d", IconCloudRain},
		{"09n", IconCloudRain},
		{"10d", IconCloudSunRain},
		{"10n", IconCloudMoonRain},
		{"11d", IconBolt},
		{"11n", IconBolt},
		{"13d", IconSnowflake},
		{"13n", IconSnowflake},
		{"50d", IconSmog},
		{"50n", IconSmog},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ResolveIcon(tc.code), tc.code)
	}
}

func TestResolveIconFallsBackToCloud(t *testing.T) {
	for _, code := range []string{"", "01", "01D", "99d", "sun", " 01d"} {
		assert.Equal(t, IconCloud, ResolveIcon(code), code)
	}
}

func TestResolveIconCoversEveryOpenMeteoCode(t *testing.T) {
	for code := 0; code <= 99; code++ {
		for _, day := range []bool{true, false} {
			icon, _ := openMeteoCondition(code, day)
			if icon == "" {
				continue
			}
			_, known := iconsByCode[icon]
			assert.True(t, known, "wmo %d translated to unmapped code %q", code, icon)
		}
	}
}

func TestSnapshotSymbol(t *testing.T) {
	var missing *Snapshot
	assert.Equal(t, IconCloud, missing.Symbol())
	assert.Equal(t, IconBolt, (&Snapshot{Icon: "11n"}).Symbol())
}

func TestParseUnit(t *testing.T) {
	unit, err := ParseUnit(" Imperial ")
	assert.NoError(t, err)
	assert.Equal(t, Imperial, unit)

	unit, err = ParseUnit("metric")
	assert.NoError(t, err)
	assert.Equal(t, Metric, unit)

	_, err = ParseUnit("kelvin")
	assert.Error(t, err)

	assert.Equal(t, "C", Metric.TemperatureSuffix())
	assert.Equal(t, "F", Imperial.TemperatureSuffix())
	assert.Equal(t, "m/s", Metric.SpeedSuffix())
	assert.Equal(t, "mph", Imperial.SpeedSuffix())
}
