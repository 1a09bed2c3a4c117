// Package server exposes structural alphabet encoding over HTTP.
//
// Routes:
//
//	POST /api/encode               encode an uploaded structure file
//	GET  /api/entry/{id}           download a PDB entry and encode it
//	GET  /api/entry/{id}/{chain}   one chain's sequence as a text attachment
//	GET  /healthz                  liveness
//
// Structure files can be uploaded as the "file" field of a multipart form
// or as the raw request body. Every response carries an X-Request-Id
// header.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pranavathiyani/predict3Di/pdb"
	"github.com/pranavathiyani/predict3Di/source"
	"github.com/pranavathiyani/predict3Di/threedi"
)

// DefaultMaxUpload is the largest accepted upload when none is configured.
const DefaultMaxUpload = 64 << 20

// Fetcher downloads and parses entries by PDB identifier. *source.Fetcher
// is the implementation used outside of tests.
type Fetcher interface {
	FetchEntry(ctx context.Context, id string) (*pdb.Entry, source.Download, error)
}

// Options configures a Server.
type Options struct {
	// MaxUpload is the largest structure file accepted in bytes.
	MaxUpload int64

	// Log receives one line per request. When nil, the standard logger
	// is used.
	Log *log.Logger
}

// Server is an http.Handler serving the encoding API.
type Server struct {
	enc       *threedi.Encoder
	fetch     Fetcher
	maxUpload int64
	log       *log.Logger
	mux       *http.ServeMux
}

// New returns a server encoding with enc and downloading with fetch.
func New(enc *threedi.Encoder, fetch Fetcher, opts Options) *Server {
	s := &Server{
		enc:       enc,
		fetch:     fetch,
		maxUpload: opts.MaxUpload,
		log:       opts.Log,
		mux:       http.NewServeMux(),
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if s.log == nil {
		s.log = log.Default()
	}
	s.mux.HandleFunc("POST /api/encode", s.handleEncode)
	s.mux.HandleFunc("GET /api/entry/{id}", s.handleEntry)
	s.mux.HandleFunc("GET /api/entry/{id}/{chain}", s.handleChain)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

type ctxKey int

const requestIDKey ctxKey = 0

// ServeHTTP assigns a request id, dispatches the request and logs it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	rec.Header().Set("X-Request-Id", id)

	r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
	s.mux.ServeHTTP(rec, r)
	s.log.Printf("%s %s %s %d %s", id, r.Method, r.URL.Path, rec.status,
		time.Since(start).Round(time.Millisecond))
}

// RequestID returns the id assigned to the request by the server.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ChainResult is the JSON form of an encoded chain.
type ChainResult struct {
	Chain    string `json:"chain"`
	Sequence string `json:"sequence"`
	Length   int    `json:"length"`
	Degraded []int  `json:"degraded"`
	Partial  int    `json:"partial"`
}

// EncodeResult is the JSON response of the encoding endpoints.
type EncodeResult struct {
	RequestID string        `json:"request_id"`
	ID        string        `json:"id"`
	Source    string        `json:"source,omitempty"`
	Chains    []ChainResult `json:"chains"`
}

// ErrorResult is the JSON response of any failed request.
type ErrorResult struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entry, err := source.Decode(name, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, entry, "")
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	entry, dl, err := s.fetch.FetchEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, entry, dl.URL)
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	entry, _, err := s.fetch.FetchEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ident := r.PathValue("chain")
	chain := entry.Chain(ident)
	if chain == nil {
		s.fail(w, r, &httpError{http.StatusNotFound,
			fmt.Sprintf("entry '%s' has no chain '%s'", entry.IdCode, ident)})
		return
	}
	enc := s.enc.EncodeChain(chain)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
		map[string]string{"filename": DownloadName(enc.ID)}))
	io.WriteString(w, enc.Sequence)
}

// DownloadName is the file name a chain's sequence is offered as.
func DownloadName(chain string) string {
	return fmt.Sprintf("chain_%s_3di.txt", chain)
}

// readUpload returns the name and content of an uploaded structure file.
// Multipart bodies are streamed part by part, so no upload ever touches the
// disk.
func (s *Server) readUpload(
	w http.ResponseWriter,
	r *http.Request,
) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	name := r.URL.Query().Get("name")

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return name, data, err
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, &httpError{http.StatusBadRequest, err.Error()}
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, &httpError{http.StatusBadRequest,
				"multipart upload has no 'file' field"}
		} else if err != nil {
			return "", nil, uploadError(err)
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		if len(name) == 0 {
			name = part.FileName()
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return "", nil, uploadError(err)
		}
		return name, data, nil
	}
}

// uploadError keeps size limit errors as they are and reports any other
// failure to read a multipart body as a bad request.
func uploadError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return &httpError{http.StatusBadRequest, err.Error()}
}

func (s *Server) respond(
	w http.ResponseWriter,
	r *http.Request,
	entry *pdb.Entry,
	from string,
) {
	writeJSON(w, http.StatusOK, EncodeResult{
		RequestID: RequestID(r.Context()),
		ID:        entry.IdCode,
		Source:    from,
		Chains:    Chains(s.enc.EncodeEntry(entry)),
	})
}

// Chains converts encoded chains to their JSON form.
func Chains(encoded []threedi.Chain) []ChainResult {
	results := make([]ChainResult, 0, len(encoded))
	for _, c := range encoded {
		degraded := c.Degraded
		if degraded == nil {
			degraded = []int{}
		}
		results = append(results, ChainResult{
			Chain:    c.ID,
			Sequence: c.Sequence,
			Length:   c.Len(),
			Degraded: degraded,
			Partial:  c.Partial,
		})
	}
	return results
}

type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string {
	return e.msg
}

// status maps an error to the HTTP status reported for it.
func status(err error) int {
	var (
		herr     *httpError
		perr     *pdb.ParseError
		ferr     *source.FetchError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.As(err, &herr):
		return herr.status
	case errors.As(err, &perr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, source.ErrInvalidID):
		return http.StatusBadRequest
	case errors.As(err, &ferr):
		return http.StatusBadGateway
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	id := RequestID(r.Context())
	code := status(err)
	if code == http.StatusInternalServerError {
		s.log.Printf("%s error: %s", id, err)
	}
	writeJSON(w, code, ErrorResult{RequestID: id, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
