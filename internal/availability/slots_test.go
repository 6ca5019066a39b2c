package availability

import (
	"reflect"
	"testing"
	"time"

	"github.com/agendaly/agendaly-api/internal/model"
)

func TestGrid(t *testing.T) {
	got := Grid(model.DayHours{Start: "09:00", End: "11:00"}, 30)
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Grid = %v, want %v", got, want)
	}

	if got := Grid(model.DayHours{Start: "10:00", End: "09:00"}, 30); got != nil {
		t.Fatalf("inverted window should be empty, got %v", got)
	}
	if got := Grid(model.DayHours{Start: "bad", End: "11:00"}, 30); got != nil {
		t.Fatalf("malformed start should be empty, got %v", got)
	}
	if got := Grid(model.DayHours{Start: "25:00", End: "26:00"}, 30); got != nil {
		t.Fatalf("out-of-range hours should be empty, got %v", got)
	}
}

func TestForDay(t *testing.T) {
	st := model.Staff{
		ID: "st1",
		Schedule: model.WeekSchedule{
			"monday": {Start: "09:00", End: "11:00", Enabled: true},
			"sunday": {Start: "09:00", End: "14:00", Enabled: false},
		},
	}
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	appts := []model.Appointment{
		{Date: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
		{Date: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
		{Date: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}, // duplicate time
	}

	day := ForDay(st, monday, appts, 30)
	if !day.Working {
		t.Fatal("monday should be a working day")
	}
	if !reflect.DeepEqual(day.BookedTimes, []string{"09:30", "10:00"}) {
		t.Fatalf("booked times = %v", day.BookedTimes)
	}
	if !reflect.DeepEqual(day.FreeSlots, []string{"09:00", "10:30"}) {
		t.Fatalf("free slots = %v", day.FreeSlots)
	}
}

func TestForDayOffDay(t *testing.T) {
	st := model.Staff{
		Schedule: model.WeekSchedule{
			"sunday": {Start: "09:00", End: "14:00", Enabled: false},
		},
	}
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	day := ForDay(st, sunday, nil, 30)
	if day.Working {
		t.Fatal("disabled day must not be working")
	}
	if len(day.FreeSlots) != 0 || len(day.BookedTimes) != 0 {
		t.Fatalf("off day should expose no slots: %+v", day)
	}

	// a weekday missing from the schedule entirely counts as off
	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if d := ForDay(st, tuesday, nil, 30); d.Working {
		t.Fatal("unscheduled day must not be working")
	}
}
