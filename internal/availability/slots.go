// Package availability computes what the public booking page shows for
// a staff member on a given day: the working window, the times already
// taken, and the free slot grid.
package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/agendaly/agendaly-api/internal/model"
)

// Day is the availability answer for one staff member and calendar day.
type Day struct {
	Date        string         `json:"date"`
	Weekday     string         `json:"weekday"`
	Working     bool           `json:"working"`
	Hours       model.DayHours `json:"hours"`
	BookedTimes []string       `json:"booked_times"`
	FreeSlots   []string       `json:"free_slots"`
}

// ForDay resolves the staff schedule for the day and subtracts the
// already booked times. appts must be non-cancelled appointments of the
// same staff member on that day; slotMinutes sets the grid step.
func ForDay(st model.Staff, day time.Time, appts []model.Appointment, slotMinutes int) Day {
	weekday := strings.ToLower(day.Weekday().String())
	out := Day{
		Date:        day.Format("2006-01-02"),
		Weekday:     weekday,
		BookedTimes: []string{},
		FreeSlots:   []string{},
	}

	hours, ok := st.Schedule[weekday]
	if !ok || !hours.Enabled {
		return out
	}
	out.Working = true
	out.Hours = hours

	booked := map[string]bool{}
	for _, a := range appts {
		t := a.Date.UTC().Format("15:04")
		if !booked[t] {
			booked[t] = true
			out.BookedTimes = append(out.BookedTimes, t)
		}
	}

	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	for _, slot := range Grid(hours, slotMinutes) {
		if !booked[slot] {
			out.FreeSlots = append(out.FreeSlots, slot)
		}
	}
	return out
}

// Grid expands working hours into HH:MM start times stepMinutes apart.
// A slot must start strictly before the end of the window. Malformed
// hours yield an empty grid.
func Grid(hours model.DayHours, stepMinutes int) []string {
	start, ok := parseHHMM(hours.Start)
	if !ok {
		return nil
	}
	end, ok := parseHHMM(hours.End)
	if !ok || end <= start {
		return nil
	}

	var slots []string
	for m := start; m < end; m += stepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

func parseHHMM(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
