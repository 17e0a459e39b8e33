package service

import (
	"strings"
	"time"
)

// Battle-log date layouts, tried in order.
var matchTimeLayouts = []string{
	"2006/1/2 15:04",
	"1/2/2006 15:04",
	"2006. 1. 2. PM 3:04:05",
	"2006. 1. 2. 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var meridiemReplacer = strings.NewReplacer("오전", "AM", "오후", "PM")

// ParseMatchTime parses battle-log date text in loc. When no layout fits it
// returns the current time and false.
func ParseMatchTime(text string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	text = strings.Join(strings.Fields(meridiemReplacer.Replace(text)), " ")
	if text != "" {
		for _, layout := range matchTimeLayouts {
			if t, err := time.ParseInLocation(layout, text, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Now().In(loc), false
}
