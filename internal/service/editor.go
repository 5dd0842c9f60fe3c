// Package service exposes the editing operations the front ends call: load
// the document, add or remove DLC entries, set [steam] fields and look up
// candidates in the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"dlcini/internal/ini"
	"dlcini/internal/model"
	"dlcini/internal/store"
)

// Validation errors returned before the document is touched.
var (
	ErrEmptyPath  = errors.New("file path is required")
	ErrEmptyID    = errors.New("dlc id is required")
	ErrEmptyName  = errors.New("dlc name is required")
	ErrEmptyKey   = errors.New("field key is required")
	ErrEmptyQuery = errors.New("search term is required")
	ErrInvalidID  = errors.New("dlc id may not contain '=', line breaks or start with ';' or '['")
	ErrInvalidKey = errors.New("field key may not contain '=', line breaks or start with ';' or '['")
	ErrMultiline  = errors.New("value may not contain line breaks")
)

// Finder looks up DLC candidates. *catalog.Client satisfies it.
type Finder interface {
	DLCForApp(ctx context.Context, baseAppID string) ([]model.Candidate, error)
	Search(ctx context.Context, query string) ([]model.Candidate, error)
}

// PathRecorder remembers the last chosen file. *config.Manager satisfies it.
type PathRecorder interface {
	SetLastFile(path string) error
}

// Document is a parsed file together with where it came from.
type Document struct {
	Path string `json:"path"`
	ini.Document
}

// Config flattens the document for display.
func (d Document) Config() model.Config {
	appid, _ := d.Primary.Get("appid")
	unlock, _ := d.Primary.Get("unlockall")
	return model.Config{
		Path:      d.Path,
		AppID:     appid,
		UnlockAll: strings.EqualFold(unlock, "true"),
		Steam:     d.Primary.Map(),
		Entries:   Entries(d.List),
	}
}

// Editor runs the operations against the session's current document.
type Editor struct {
	session  *store.Session
	finder   Finder
	recorder PathRecorder
	log      *zap.Logger
}

// NewEditor wires an editor. finder and recorder may be nil.
func NewEditor(session *store.Session, finder Finder, recorder PathRecorder, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{session: session, finder: finder, recorder: recorder, log: log.Named("editor")}
}

// Path returns the current document path.
func (e *Editor) Path() string {
	return e.session.Path()
}

// ChooseFile makes path the current document. The file must exist. The choice
// is remembered for the next start when a recorder is configured; failing to
// remember it is logged, not returned.
func (e *Editor) ChooseFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}
	info, err := os.Stat(model.ExpandTilde(path))
	if err != nil {
		return "", fmt.Errorf("choose %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("choose %s: is a directory", path)
	}
	e.session.SetPath(path)
	if e.recorder != nil {
		if err := e.recorder.SetLastFile(path); err != nil {
			e.log.Warn("could not remember file", zap.String("path", path), zap.Error(err))
		}
	}
	return path, nil
}

// Load reads and parses the current document.
func (e *Editor) Load(ctx context.Context) (Document, error) {
	path, raw, err := e.session.Read(ctx)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: path, Document: ini.Parse(raw)}, nil
}

// AddEntry inserts or renames one DLC and rewrites the [dlc] block. It
// returns the resulting entries.
func (e *Editor) AddEntry(ctx context.Context, id, name string) (*ini.FieldMap, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if err := validateEntry(id, name); err != nil {
		return nil, err
	}
	list, err := e.rewriteList(ctx, func(list *ini.FieldMap) {
		list.Set(id, name)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("dlc added", zap.String("id", id), zap.String("name", name))
	return list, nil
}

// AddEntries inserts several candidates in a single rewrite.
func (e *Editor) AddEntries(ctx context.Context, cands []model.Candidate) (*ini.FieldMap, error) {
	for _, c := range cands {
		if err := validateEntry(strings.TrimSpace(c.AppID), strings.TrimSpace(c.Name)); err != nil {
			return nil, fmt.Errorf("%s: %w", c.AppID, err)
		}
	}
	list, err := e.rewriteList(ctx, func(list *ini.FieldMap) {
		for _, c := range cands {
			list.Set(strings.TrimSpace(c.AppID), strings.TrimSpace(c.Name))
		}
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("dlc added", zap.Int("count", len(cands)))
	return list, nil
}

// RemoveEntry deletes one DLC and rewrites the [dlc] block. Removing an id
// that is not present still normalizes the block.
func (e *Editor) RemoveEntry(ctx context.Context, id string) (*ini.FieldMap, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyID
	}
	list, err := e.rewriteList(ctx, func(list *ini.FieldMap) {
		list.Delete(id)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("dlc removed", zap.String("id", id))
	return list, nil
}

// SetPrimaryField upserts key = value in the [steam] section.
func (e *Editor) SetPrimaryField(ctx context.Context, key, value string) error {
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" {
		return ErrEmptyKey
	}
	if !validToken(key) {
		return ErrInvalidKey
	}
	if strings.ContainsAny(value, "\r\n") {
		return ErrMultiline
	}
	err := e.session.Edit(ctx, func(raw string) (string, error) {
		return ini.UpsertPrimaryField(raw, key, value), nil
	})
	if err != nil {
		return err
	}
	e.log.Info("steam field set", zap.String("key", key), zap.String("value", value))
	return nil
}

// SetUnlockAll writes unlockall = true or false.
func (e *Editor) SetUnlockAll(ctx context.Context, on bool) error {
	return e.SetPrimaryField(ctx, "unlockall", fmt.Sprint(on))
}

// DiscoverByAppID lists the store DLCs of a base application.
func (e *Editor) DiscoverByAppID(ctx context.Context, appid string) ([]model.Candidate, error) {
	appid = strings.TrimSpace(appid)
	if appid == "" {
		return nil, ErrEmptyID
	}
	if e.finder == nil {
		return nil, errors.New("store lookup is not configured")
	}
	return e.finder.DLCForApp(ctx, appid)
}

// SearchByName searches the store for DLCs matching query.
func (e *Editor) SearchByName(ctx context.Context, query string) ([]model.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if e.finder == nil {
		return nil, errors.New("store lookup is not configured")
	}
	return e.finder.Search(ctx, query)
}

// rewriteList parses, lets mutate change the entries and writes the [dlc]
// block back, all under the session lock.
func (e *Editor) rewriteList(ctx context.Context, mutate func(*ini.FieldMap)) (*ini.FieldMap, error) {
	var list *ini.FieldMap
	err := e.session.Edit(ctx, func(raw string) (string, error) {
		doc := ini.Parse(raw)
		mutate(doc.List)
		list = doc.List
		return ini.ReplaceListBlock(doc.Raw, doc.List), nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func validateEntry(id, name string) error {
	switch {
	case id == "":
		return ErrEmptyID
	case name == "":
		return ErrEmptyName
	case !validToken(id):
		return ErrInvalidID
	case strings.ContainsAny(name, "\r\n"):
		return ErrMultiline
	}
	return nil
}

// validToken reports whether s can be written as a key and parsed back.
func validToken(s string) bool {
	if strings.ContainsAny(s, "=\r\n") {
		return false
	}
	return !strings.HasPrefix(s, ini.CommentPrefix) && !strings.HasPrefix(s, "[")
}
