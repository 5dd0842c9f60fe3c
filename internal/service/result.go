package service

import (
	"fmt"
	"strings"

	"dlcini/internal/ini"
	"dlcini/internal/model"
)

// Result is the tagged outcome handed to a front end: either OK with a value
// or a failure carrying a readable message.
type Result[T any] struct {
	OK    bool   `json:"ok"`
	Value T      `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Fail wraps an error.
func Fail[T any](err error) Result[T] {
	return Result[T]{Error: err.Error()}
}

// Do runs fn and reports its outcome as a Result. A panic inside fn becomes a
// failure instead of taking the process down.
func Do[T any](fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Fail[T](fmt.Errorf("internal error: %v", r))
		}
	}()
	v, err := fn()
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// Entries lists the map as id/name pairs in map order.
func Entries(list *ini.FieldMap) []model.Entry {
	out := make([]model.Entry, 0, list.Len())
	list.Each(func(id, name string) {
		out = append(out, model.Entry{ID: id, Name: name})
	})
	return out
}

// FilterEntries keeps the entries whose id or name contains query, ignoring
// case. An empty query keeps everything.
func FilterEntries(entries []model.Entry, query string) []model.Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	var out []model.Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.ID), q) || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
