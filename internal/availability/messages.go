package availability

import (
	"fmt"
	"strings"
	"time"
)

// User-facing rejection messages. Spanish, matching the channel language.
// Each one phrases the next actionable step for the customer.

func msgSpecialDate(userDate string) string {
	return fmt.Sprintf("Lo sentimos, el %s no admitimos reservas online por ser fecha señalada. Llámanos y vemos qué podemos hacer.", userDate)
}

func msgSameDay(restaurantPhone string) string {
	return fmt.Sprintf("Para reservas de hoy mismo, por favor llámanos directamente al %s y te confirmamos disponibilidad al momento.", restaurantPhone)
}

func msgClosedDay(userDate string, openWeekdays []string) string {
	return fmt.Sprintf("Ese día (%s) estamos cerrados. Abrimos %s. ¿Te viene bien otra fecha?", userDate, strings.Join(openWeekdays, ", "))
}

func msgPastDate(userDate string) string {
	return fmt.Sprintf("La fecha %s ya ha pasado. ¿Para qué día te gustaría reservar?", userDate)
}

func msgTooFarAhead(maxDays int) string {
	return fmt.Sprintf("Solo aceptamos reservas con un máximo de %d días de antelación. ¿Quieres una fecha más cercana?", maxDays)
}

func msgTooEarly(opening string) string {
	return fmt.Sprintf("A esa hora aún no hemos abierto. Abrimos a las %s. ¿Te va bien esa hora?", opening)
}

func msgTooLate(closing string) string {
	return fmt.Sprintf("A esa hora la cocina ya está cerrada. La última hora para reservar es las %s. ¿Te va bien?", closing)
}

func msgOffGridTime(intervalMin int, slot string) string {
	return fmt.Sprintf("Damos mesa cada %d minutos. ¿Te va bien a las %s?", intervalMin, slot)
}

func msgPartyTooLarge(restaurantPhone string) string {
	return fmt.Sprintf("Para grupos tan grandes preferimos atenderte por teléfono y organizarlo bien. Llámanos al %s.", restaurantPhone)
}

func msgSlotFull(userTime string) string {
	return fmt.Sprintf("Lo sentimos, a las %s ya estamos completos. ¿Te va bien otra hora?", userTime)
}

func msgDayFull(userDate string) string {
	return fmt.Sprintf("Lo sentimos, el %s estamos completos todo el día. ¿Miramos otra fecha?", userDate)
}

// userDate renders a canonical storage date for the customer as dd/MM/yyyy.
func userDate(d time.Time) string {
	return d.Format("02/01/2006")
}

// Spanish weekday names, used when enumerating open days.
var spanishWeekdays = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}
