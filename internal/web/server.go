package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dlcini/internal/docs"
	"dlcini/internal/ini"
	"dlcini/internal/model"
	"dlcini/internal/report"
	"dlcini/internal/service"
)

//go:embed static/*
var staticFS embed.FS

// Server serves the browser front end and its JSON API.
type Server struct {
	editor *service.Editor
	log    *zap.Logger
	mux    *http.ServeMux
}

// NewServer registers the routes for editor.
func NewServer(editor *service.Editor, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{editor: editor, log: log.Named("web"), mux: http.NewServeMux()}

	subFS, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/", http.FileServer(http.FS(subFS)))

	s.mux.HandleFunc("GET /api/file", s.handleGetFile)
	s.mux.HandleFunc("POST /api/file", s.handleChooseFile)
	s.mux.HandleFunc("GET /api/config", s.handleConfig)
	s.mux.HandleFunc("POST /api/dlc", s.handleAdd)
	s.mux.HandleFunc("DELETE /api/dlc", s.handleRemove)
	s.mux.HandleFunc("POST /api/dlc/bulk", s.handleAddBulk)
	s.mux.HandleFunc("POST /api/steam", s.handleSteam)
	s.mux.HandleFunc("GET /api/discover", s.handleDiscover)
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/line-context", s.handleLineContext)
	s.mux.HandleFunc("GET /api/help", s.handleHelp)
	return s
}

// Handler returns the root handler with request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

// StartServer serves editor on port until ctx is canceled.
func StartServer(ctx context.Context, editor *service.Editor, port int, log *zap.Logger) error {
	s := NewServer(editor, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Starting dlcini web server at http://localhost:%d\n", port)
	fmt.Printf("Editing %s\n", editor.Path())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		log := s.log.With(zap.String("request_id", id))
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				log.Error("handler panic", zap.Any("panic", p), zap.String("path", r.URL.Path))
				writeJSON(rec, http.StatusInternalServerError, service.Result[any]{Error: fmt.Sprintf("internal error: %v", p)})
			}
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("took", time.Since(start)))
		}()
		next.ServeHTTP(rec, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeResult always answers 200; the envelope's ok flag carries the outcome.
func writeResult[T any](w http.ResponseWriter, res service.Result[T]) {
	writeJSON(w, http.StatusOK, res)
}

func decodeBody[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("invalid request body: %w", err)
	}
	return v, nil
}

type fileView struct {
	Path string `json:"path"`
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() (fileView, error) {
		return fileView{Path: s.editor.Path()}, nil
	}))
}

func (s *Server) handleChooseFile(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() (fileView, error) {
		req, err := decodeBody[fileView](r)
		if err != nil {
			return fileView{}, err
		}
		p, err := s.editor.ChooseFile(req.Path)
		return fileView{Path: p}, err
	}))
}

type configView struct {
	Config        model.Config `json:"config"`
	Span          ini.Span     `json:"span"`
	Report        string       `json:"report"`
	VerboseReport string       `json:"verbose_report"`
	Version       string       `json:"version"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() (configView, error) {
		doc, err := s.editor.Load(r.Context())
		if err != nil {
			return configView{}, err
		}
		return configView{
			Config:        doc.Config(),
			Span:          doc.Span,
			Report:        report.Generate(doc, false),
			VerboseReport: report.Generate(doc, true),
			Version:       model.Version,
		}, nil
	}))
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() ([]model.Entry, error) {
		req, err := decodeBody[model.Entry](r)
		if err != nil {
			return nil, err
		}
		list, err := s.editor.AddEntry(r.Context(), req.ID, req.Name)
		if err != nil {
			return nil, err
		}
		return service.Entries(list), nil
	}))
}

func (s *Server) handleAddBulk(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() ([]model.Entry, error) {
		req, err := decodeBody[[]model.Candidate](r)
		if err != nil {
			return nil, err
		}
		list, err := s.editor.AddEntries(r.Context(), req)
		if err != nil {
			return nil, err
		}
		return service.Entries(list), nil
	}))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() ([]model.Entry, error) {
		list, err := s.editor.RemoveEntry(r.Context(), r.URL.Query().Get("id"))
		if err != nil {
			return nil, err
		}
		return service.Entries(list), nil
	}))
}

type fieldRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleSteam(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() (fieldRequest, error) {
		req, err := decodeBody[fieldRequest](r)
		if err != nil {
			return fieldRequest{}, err
		}
		return req, s.editor.SetPrimaryField(r.Context(), req.Key, req.Value)
	}))
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() ([]model.Candidate, error) {
		return s.editor.DiscoverByAppID(r.Context(), r.URL.Query().Get("appid"))
	}))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() ([]model.Candidate, error) {
		return s.editor.SearchByName(r.Context(), r.URL.Query().Get("q"))
	}))
}

func (s *Server) handleLineContext(w http.ResponseWriter, r *http.Request) {
	writeResult(w, service.Do(func() (model.LineContext, error) {
		n, err := strconv.Atoi(r.URL.Query().Get("line"))
		if err != nil {
			return model.LineContext{}, errors.New("invalid line number")
		}
		doc, err := s.editor.Load(r.Context())
		if err != nil {
			return model.LineContext{}, err
		}
		return model.GetLineContext(ini.SplitLines(doc.Raw), n), nil
	}))
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown")
	w.Write([]byte(docs.Help()))
}
