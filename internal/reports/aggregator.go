package reports

import (
	"math"
	"sort"

	"timeclock-backend/internal/models"
)

// Label used when a record's perimeter was deleted after the fact.
const deletedLocationLabel = "(deleted location)"

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DayHours struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

type StaffHours struct {
	UserID uint    `json:"userId"`
	Name   string  `json:"name"`
	Hours  float64 `json:"hours"`
}

type LocationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report mirrors the data shape the manager dashboard charts consume.
type Report struct {
	DailyClockIns        []DayCount      `json:"dailyClockIns"`
	StaffHours           []StaffHours    `json:"staffHours"`
	AvgDailyHours        []DayHours      `json:"avgDailyHours"`
	LocationDistribution []LocationCount `json:"locationDistribution"`
	TotalHours           float64         `json:"totalHours"`
	AverageHoursPerDay   float64         `json:"averageHoursPerDay"`
	TotalStaff           int             `json:"totalStaff"`
	CurrentlyActive      int             `json:"currentlyActive"`
}

// Aggregate rolls a window of clock records up into the report. Pure: the
// caller loads the records and the id→name lookup maps.
//
// Open records (no clock-out yet) contribute zero hours but are counted as
// currently active. Hours are bucketed by clock-in date.
func Aggregate(records []models.ClockRecord, userNames map[uint]string, perimeterNames map[uint]string) Report {
	dailyCounts := make(map[string]int)
	dailyHours := make(map[string]float64)
	dailyStaff := make(map[string]map[uint]struct{})
	staffHours := make(map[uint]float64)
	locationCounts := make(map[string]int)
	staffSeen := make(map[uint]struct{})

	active := 0

	for i := range records {
		rec := &records[i]
		day := rec.ClockInTime.Format("2006-01-02")

		dailyCounts[day]++
		staffSeen[rec.UserID] = struct{}{}

		locName, ok := perimeterNames[rec.LocationPerimeterID]
		if !ok {
			locName = deletedLocationLabel
		}
		locationCounts[locName]++

		if rec.Open() {
			active++
			continue
		}

		hours := rec.WorkedDuration().Hours()
		staffHours[rec.UserID] += hours
		dailyHours[day] += hours
		if dailyStaff[day] == nil {
			dailyStaff[day] = make(map[uint]struct{})
		}
		dailyStaff[day][rec.UserID] = struct{}{}
	}

	report := Report{
		DailyClockIns:        make([]DayCount, 0, len(dailyCounts)),
		StaffHours:           make([]StaffHours, 0, len(staffHours)),
		AvgDailyHours:        make([]DayHours, 0, len(dailyHours)),
		LocationDistribution: make([]LocationCount, 0, len(locationCounts)),
		TotalStaff:           len(staffSeen),
		CurrentlyActive:      active,
	}

	for day, count := range dailyCounts {
		report.DailyClockIns = append(report.DailyClockIns, DayCount{Date: day, Count: count})
	}
	sort.Slice(report.DailyClockIns, func(i, j int) bool {
		return report.DailyClockIns[i].Date < report.DailyClockIns[j].Date
	})

	for userID, hours := range staffHours {
		name, ok := userNames[userID]
		if !ok {
			name = "(unknown)"
		}
		report.StaffHours = append(report.StaffHours, StaffHours{
			UserID: userID,
			Name:   name,
			Hours:  round2(hours),
		})
		report.TotalHours += hours
	}
	sort.Slice(report.StaffHours, func(i, j int) bool {
		if report.StaffHours[i].Hours != report.StaffHours[j].Hours {
			return report.StaffHours[i].Hours > report.StaffHours[j].Hours
		}
		return report.StaffHours[i].UserID < report.StaffHours[j].UserID
	})
	report.TotalHours = round2(report.TotalHours)

	// Per-day average across the staff who closed a shift that day.
	sumDailyAvg := 0.0
	for day, hours := range dailyHours {
		avg := hours / float64(len(dailyStaff[day]))
		report.AvgDailyHours = append(report.AvgDailyHours, DayHours{Date: day, Hours: round2(avg)})
		sumDailyAvg += avg
	}
	sort.Slice(report.AvgDailyHours, func(i, j int) bool {
		return report.AvgDailyHours[i].Date < report.AvgDailyHours[j].Date
	})
	if len(report.AvgDailyHours) > 0 {
		report.AverageHoursPerDay = round2(sumDailyAvg / float64(len(report.AvgDailyHours)))
	}

	for name, count := range locationCounts {
		report.LocationDistribution = append(report.LocationDistribution, LocationCount{Name: name, Count: count})
	}
	sort.Slice(report.LocationDistribution, func(i, j int) bool {
		if report.LocationDistribution[i].Count != report.LocationDistribution[j].Count {
			return report.LocationDistribution[i].Count > report.LocationDistribution[j].Count
		}
		return report.LocationDistribution[i].Name < report.LocationDistribution[j].Name
	})

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
