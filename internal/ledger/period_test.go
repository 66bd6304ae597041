package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart string
		wantEnd   string
	}{
		{name: "july", year: 2020, month: 7, wantStart: "2020-07-01", wantEnd: "2020-07-31"},
		{name: "leap february", year: 2020, month: 2, wantStart: "2020-02-01", wantEnd: "2020-02-29"},
		{name: "common february", year: 2021, month: 2, wantStart: "2021-02-01", wantEnd: "2021-02-28"},
		{name: "century is not leap", year: 1900, month: 2, wantStart: "1900-02-01", wantEnd: "1900-02-28"},
		{name: "400 year rule is leap", year: 2000, month: 2, wantStart: "2000-02-01", wantEnd: "2000-02-29"},
		{name: "december", year: 2020, month: 12, wantStart: "2020-12-01", wantEnd: "2020-12-31"},
		{name: "thirty day month", year: 2020, month: 4, wantStart: "2020-04-01", wantEnd: "2020-04-30"},
		{name: "month past range normalizes", year: 2020, month: 13, wantStart: "2021-01-01", wantEnd: "2021-01-31"},
		{name: "month zero normalizes", year: 2020, month: 0, wantStart: "2019-12-01", wantEnd: "2019-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthWindow(tt.year, tt.month)
			assert.Equal(t, tt.wantStart, start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, end.Format("2006-01-02"))
			assert.Equal(t, time.UTC, start.Location())
		})
	}
}

func TestMonthWindow_EndIsLastDayOfSameMonth(t *testing.T) {
	for year := 1970; year <= 2400; year++ {
		for month := 1; month <= 12; month++ {
			start, end := MonthWindow(year, month)

			assert.Equal(t, 1, start.Day())
			assert.Equal(t, time.Month(month), start.Month())
			assert.Equal(t, start.Month(), end.Month(), "%d-%02d", year, month)
			assert.Equal(t, time.Month(month)%12+1, end.AddDate(0, 0, 1).Month(), "%d-%02d", year, month)
		}
	}
}

func TestMonthWindow_NeverPanics(t *testing.T) {
	inputs := [][2]int{
		{0, 0},
		{-1, -1},
		{math.MaxInt32, math.MaxInt32},
		{math.MinInt32, 7},
		{2020, math.MinInt32},
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { MonthWindow(in[0], in[1]) })
	}
}
