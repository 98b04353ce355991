package domain

import "time"

type Airport struct {
	ID       string `json:"airport_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
	TimeZone string `json:"time_zone"`
}

// Location resolves the airport time zone, falling back to UTC when it is unset or unknown.
func (a Airport) Location() *time.Location {
	if a.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
