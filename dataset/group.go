package dataset

import (
	"cmp"
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"
)

// NoValue is the bucket key of records missing the grouped field.
const NoValue = "(none)"

// Bucket is a group of records sharing a field value.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// GroupBy counts records by the value of field. Buckets are sorted by
// count, largest first, then by key.
func GroupBy(records []Record, field string) []Bucket {
	counts := make(map[string]int)
	for _, r := range records {
		counts[valueString(r[field])]++
	}
	buckets := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket{Key: k, Count: n})
	}
	slices.SortFunc(buckets, func(a, b Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return buckets
}

// Fields returns the sorted names of scalar fields present in records.
func Fields(records []Record) []string {
	seen := make(map[string]struct{})
	var fields []string
	for _, r := range records {
		for k, v := range r {
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			fields = append(fields, k)
		}
	}
	slices.Sort(fields)
	return fields
}

// HotelStats summarizes the rooms of one hotel.
type HotelStats struct {
	Name         string  `json:"name"`
	Location     string  `json:"location,omitempty"`
	Rooms        int     `json:"rooms"`
	Available    int     `json:"available"`
	AveragePrice float64 `json:"average_price"`
}

// RoomStats returns room counts and average room price of each hotel,
// sorted by hotel name. Hotels list their rooms under "rooms".
func RoomStats(hotels []Record) []HotelStats {
	stats := make([]HotelStats, 0, len(hotels))
	for _, h := range hotels {
		s := HotelStats{
			Name:     valueString(h["name"]),
			Location: optString(h["location"]),
		}
		rooms, _ := h["rooms"].([]any)
		var total float64
		var priced int
		for _, v := range rooms {
			room, ok := v.(map[string]any)
			if !ok {
				continue
			}
			s.Rooms++
			if avail, _ := room["available"].(bool); avail {
				s.Available++
			}
			if p, ok := number(room["price"]); ok {
				total += p
				priced++
			}
		}
		if priced > 0 {
			s.AveragePrice = total / float64(priced)
		}
		stats = append(stats, s)
	}
	slices.SortStableFunc(stats, func(a, b HotelStats) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return stats
}

// Filter returns the records whose field has value.
func Filter(records []Record, field, value string) []Record {
	var out []Record
	for _, r := range records {
		if v, ok := r[field]; ok && valueString(v) == value {
			out = append(out, r)
		}
	}
	return out
}

// Room is a hotel room, flattened with the hotel it belongs to.
type Room struct {
	Hotel     string  `json:"hotel_name"`
	Location  string  `json:"location,omitempty"`
	Number    string  `json:"number"`
	Type      string  `json:"type,omitempty"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// RoomHeader names the columns of Room.Row.
var RoomHeader = []string{"hotel_name", "location", "number", "type", "price", "available"}

// Row returns r as RoomHeader columns.
func (r Room) Row() []string {
	return []string{
		r.Hotel,
		r.Location,
		r.Number,
		r.Type,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		strconv.FormatBool(r.Available),
	}
}

// Rooms returns the rooms of all hotels, in document order.
func Rooms(hotels []Record) []Room {
	var out []Room
	for _, h := range hotels {
		rooms, _ := h["rooms"].([]any)
		for _, v := range rooms {
			room, ok := v.(map[string]any)
			if !ok {
				continue
			}
			r := Room{
				Hotel:    valueString(h["name"]),
				Location: optString(h["location"]),
				Number:   optString(room["number"]),
				Type:     optString(room["type"]),
			}
			r.Price, _ = number(room["price"])
			r.Available, _ = room["available"].(bool)
			out = append(out, r)
		}
	}
	return out
}

// AvailableRooms returns the available rooms of all hotels, in document order.
func AvailableRooms(hotels []Record) []Room {
	var out []Room
	for _, r := range Rooms(hotels) {
		if r.Available {
			out = append(out, r)
		}
	}
	return out
}

// Value returns field of r formatted as text, or "" if r lacks it.
func (r Record) Value(field string) string {
	return optString(r[field])
}

func valueString(v any) string {
	if v == nil {
		return NoValue
	}
	return fmt.Sprint(v)
}

func optString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func number(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
