package weather

import (
	"fmt"
	"math"

	"github.com/julianstephens/homebase/internal/constants"
)

func FormatTemp(t float64, units string) string {
	suffix := "C"
	if units == constants.UnitsImperial {
		suffix = "F"
	}
	return fmt.Sprintf("%d°%s", int(math.Round(t)), suffix)
}

// FormatWind renders mph for imperial and converts m/s to km/h for metric.
func FormatWind(speed float64, units string) string {
	if units == constants.UnitsImperial {
		return fmt.Sprintf("%d mph", int(math.Round(speed)))
	}
	return fmt.Sprintf("%d km/h", int(math.Round(speed*3.6)))
}

// Lines renders a report as the widget body.
func Lines(r Report, units string) []string {
	cond := r.Condition()
	return []string{
		fmt.Sprintf("%s  %s", FormatTemp(r.Main.Temp, units), cond.Description),
		fmt.Sprintf("Feels like %s", FormatTemp(r.Main.FeelsLike, units)),
		fmt.Sprintf("High/Low %s / %s", FormatTemp(r.Main.TempMax, units), FormatTemp(r.Main.TempMin, units)),
		fmt.Sprintf("Wind %s  Humidity %d%%", FormatWind(r.Wind.Speed, units), r.Main.Humidity),
	}
}
