package user

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Default page sizes. The public listing default is a separate constant so
// it cannot drift with the search default.
const (
	DefaultSearchLimit int64 = 10
	DefaultListLimit   int64 = 10
	DefaultAdminLimit  int64 = 9
)

// SearchFilter is the ephemeral per-request criteria for a profile search.
// Zero values mean "not set".
type SearchFilter struct {
	Gender   string
	Location string
	Religion string
	MinAge   int
	MaxAge   int
	Page     int64
	Limit    int64
}

// Normalize clamps pagination to sane values, applying defaultLimit when no
// page size was supplied.
func (f SearchFilter) Normalize(defaultLimit int64) SearchFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	return f
}

// Skip returns the scan offset for the normalized page/limit pair.
func (f SearchFilter) Skip() int64 {
	return (f.Page - 1) * f.Limit
}

// Criteria translates the filter into a document-store query. Gender matches
// exactly; location and religion match as case-insensitive substrings; age
// bounds are inclusive.
func (f SearchFilter) Criteria() bson.M {
	filter := bson.M{}

	if f.Gender != "" {
		filter["gender"] = f.Gender
	}
	if f.Location != "" {
		filter["city"] = substringRegex(f.Location)
	}
	if f.Religion != "" {
		filter["religion"] = substringRegex(f.Religion)
	}

	age := bson.M{}
	if f.MinAge > 0 {
		age["$gte"] = f.MinAge
	}
	if f.MaxAge > 0 {
		age["$lte"] = f.MaxAge
	}
	if len(age) > 0 {
		filter["age"] = age
	}

	return filter
}

// Matches applies the same semantics as Criteria in-process. The memory
// repository relies on it so both implementations stay interchangeable.
func (f SearchFilter) Matches(u *User) bool {
	if f.Gender != "" && u.Gender != f.Gender {
		return false
	}
	if f.Location != "" && !containsFold(u.City, f.Location) {
		return false
	}
	if f.Religion != "" && !containsFold(u.Religion, f.Religion) {
		return false
	}
	if f.MinAge > 0 && u.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && u.Age > f.MaxAge {
		return false
	}
	return true
}

func substringRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// TemporalFilter narrows admin listings by creation time.
type TemporalFilter string

// Supported admin listing windows.
const (
	FilterRecent TemporalFilter = "recent"
	FilterWeek   TemporalFilter = "week"
	FilterMonth  TemporalFilter = "month"
)

// Valid reports whether the filter is one of the supported windows. The
// empty string is valid and means recent.
func (tf TemporalFilter) Valid() bool {
	switch tf {
	case "", FilterRecent, FilterWeek, FilterMonth:
		return true
	default:
		return false
	}
}

// Since resolves the filter to a lower creation-time bound relative to now.
// The boolean is false when no bound applies. Week means the last 7 days
// counted from local midnight; month means the first calendar day of the
// current month.
func (tf TemporalFilter) Since(now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch tf {
	case FilterWeek:
		return midnight.AddDate(0, 0, -7), true
	case FilterMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

// Page is a bounded, counted result set.
type Page struct {
	Users      []*User `json:"users"`
	Total      int64   `json:"total"`
	TotalPages int64   `json:"totalPages"`
	Page       int64   `json:"page"`
	Limit      int64   `json:"limit"`
}

func totalPages(total, limit int64) int64 {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}
