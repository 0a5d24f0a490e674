// Package dataset holds the uploaded hotel reservations data: hotels,
// guests and reservations, each a list of free-form records.
package dataset

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidFormat is returned for documents that are not YAML or JSON
	// mappings of record lists.
	ErrInvalidFormat = errors.New("invalid YAML format")
	// ErrMissingSection is returned when a required section is absent.
	ErrMissingSection = errors.New("missing required section")
	// ErrNoDataset is returned by stores before the first upload.
	ErrNoDataset = errors.New("no dataset uploaded")
)

// Section names a top-level list of a dataset.
type Section string

const (
	Hotels       Section = "hotels"
	Guests       Section = "guests"
	Reservations Section = "reservations"
)

// Sections lists the required sections, in document order.
var Sections = []Section{Hotels, Guests, Reservations}

// ParseSection returns the section named s.
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Record is a single hotel, guest or reservation.
type Record map[string]any

// Dataset is one uploaded document.
type Dataset struct {
	ID           string    `json:"id"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Checksum     string    `json:"checksum"`
	Hotels       []Record  `json:"hotels"`
	Guests       []Record  `json:"guests"`
	Reservations []Record  `json:"reservations"`
}

// Section returns the records of s.
func (d *Dataset) Section(s Section) []Record {
	switch s {
	case Hotels:
		return d.Hotels
	case Guests:
		return d.Guests
	case Reservations:
		return d.Reservations
	default:
		return nil
	}
}

func (d *Dataset) setSection(s Section, records []Record) {
	switch s {
	case Hotels:
		d.Hotels = records
	case Guests:
		d.Guests = records
	case Reservations:
		d.Reservations = records
	}
}

// Counts are the section sizes of a dataset.
type Counts struct {
	Hotels       int `json:"hotels_count"`
	Guests       int `json:"guests_count"`
	Reservations int `json:"reservations_count"`
}

// Counts returns the number of records in each section.
func (d *Dataset) Counts() Counts {
	return Counts{
		Hotels:       len(d.Hotels),
		Guests:       len(d.Guests),
		Reservations: len(d.Reservations),
	}
}

// Parse reads a YAML (or JSON) document with hotels, guests and reservations
// sections. Each section must be a list of mappings; a null section is empty.
// Timestamps are normalized to RFC 3339 strings.
func Parse(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}
	var doc map[string]any
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrInvalidFormat)
	}
	sum := blake2b.Sum256(data)
	d := &Dataset{
		ID:         uuid.NewString(),
		UploadedAt: time.Now().UTC(),
		Checksum:   hex.EncodeToString(sum[:]),
	}
	for _, sec := range Sections {
		v, ok := doc[string(sec)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSection, sec)
		}
		records, err := toRecords(sec, v)
		if err != nil {
			return nil, err
		}
		d.setSection(sec, records)
	}
	return d, nil
}

func toRecords(sec Section, v any) ([]Record, error) {
	if v == nil {
		return []Record{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list, got %T", ErrInvalidFormat, sec, v)
	}
	records := make([]Record, 0, len(items))
	for i, item := range items {
		m, ok := normalize(item).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a mapping, got %T", ErrInvalidFormat, sec, i, item)
		}
		records = append(records, Record(m))
	}
	return records, nil
}

// normalize converts decoded YAML into JSON-compatible values.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	default:
		return v
	}
}

// Store keeps the most recently uploaded dataset.
type Store interface {
	// Replace discards the stored dataset and stores d.
	Replace(ctx context.Context, d *Dataset) error
	// Latest returns the stored dataset, or ErrNoDataset.
	Latest(ctx context.Context) (*Dataset, error)
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu sync.RWMutex
	d  *Dataset
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) Replace(_ context.Context, d *Dataset) error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", ErrInvalidFormat)
	}
	s.mu.Lock()
	s.d = d
	s.mu.Unlock()
	return nil
}

func (s *MemStore) Latest(context.Context) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.d == nil {
		return nil, ErrNoDataset
	}
	return s.d, nil
}
