// Package failure implements the append-only, goroutine-safe Failure
// Collector.
package failure

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Record is one captured item-level failure. Immutable once appended.
type Record struct {
	StepID    string
	ItemID    string
	ErrorKind string
	Message   string
	Timestamp time.Time
	Context   map[string]any
}

// Collector is the thread-safe Failure Collector.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{}
}

// Add appends a failure record. errorKind is derived from err: the short
// name of its concrete type when err is a typed error value, or the literal
// tag "str" when err is a plain errors.New/fmt.Errorf value.
func (c *Collector) Add(stepID, itemID string, err error, ctx map[string]any) {
	if c == nil {
		return
	}

	record := Record{
		StepID:    stepID,
		ItemID:    itemID,
		ErrorKind: errorKind(err),
		Timestamp: time.Now().UTC(),
		Context:   ctx,
	}
	if err != nil {
		record.Message = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

// AddRecord appends a pre-built record verbatim, preserving its ErrorKind
// and Timestamp. Used to merge one collector's snapshot into another
// without re-deriving fields from a re-wrapped error.
func (c *Collector) AddRecord(r Record) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

// GetAll returns a snapshot copy of all recorded failures.
func (c *Collector) GetAll() []Record {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Count returns the total number of recorded failures.
func (c *Collector) Count() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// CountByStep aggregates failure counts per step id.
func (c *Collector) CountByStep() map[string]int {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]int)
	for _, r := range c.records {
		out[r.StepID]++
	}
	return out
}

type kindedError interface {
	ErrorKind() string
}

// errorKind derives a short label for the error: a ErrorKind()-implementing
// error's own label, the short name of the concrete Go type (package path
// and pointer marker stripped) for any other typed error, or the literal tag
// "str" for a plain errors.New/fmt.Errorf value.
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var ke kindedError
	if errors.As(err, &ke) {
		return ke.ErrorKind()
	}

	name := fmt.Sprintf("%T", err)
	switch name {
	case "*errors.errorString", "*fmt.wrapError", "*fmt.wrapErrors":
		return "str"
	}
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
