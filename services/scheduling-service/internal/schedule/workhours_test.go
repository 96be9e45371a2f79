package schedule

import (
	"testing"
	"time"

	"github.com/rfaria/traindesk/services/scheduling-service/internal/model"
)

func TestBookable(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)
	sunday := time.Date(2024, 6, 2, 0, 0, 0, 0, loc)

	c := model.Consultant{
		ID:        "c1",
		WorkStart: "08:00",
		WorkEnd:   "17:00",
		WorkDays:  []int{1, 2, 3, 4, 5},
	}

	if !Bookable(c, monday, Morning, loc) {
		t.Fatal("expected Monday morning to be bookable")
	}
	// Work ends 17:00: the 14:00-18:00 afternoon period does not fit.
	if Bookable(c, monday, Afternoon, loc) {
		t.Fatal("afternoon should not fit inside 08:00-17:00")
	}
	if Bookable(c, sunday, Morning, loc) {
		t.Fatal("Sunday is not a work day")
	}
}

func TestBookableLateStart(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)

	c := model.Consultant{
		ID:        "c2",
		WorkStart: "09:00",
		WorkEnd:   "18:00",
		WorkDays:  []int{1},
	}

	// Work starts 09:00: the 08:00-12:00 morning period does not fit.
	if Bookable(c, monday, Morning, loc) {
		t.Fatal("morning should not fit inside 09:00-18:00")
	}
	if !Bookable(c, monday, Afternoon, loc) {
		t.Fatal("expected afternoon to be bookable")
	}
}
