package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pranavathiyani/predict3Di/pdb"
)

// ErrInvalidID is returned when a PDB identifier is not four alphanumeric
// characters starting with a digit.
var ErrInvalidID = errors.New("invalid PDB identifier")

// DefaultMirrors are the URLs structures are downloaded from, tried in
// order. The identifier is substituted for %s.
var DefaultMirrors = []string{
	"https://files.rcsb.org/download/%s.pdb",
	"https://files.rcsb.org/download/%s.cif.gz",
	"https://www.ebi.ac.uk/pdbe/entry-files/download/%s.cif",
}

// DefaultTimeout bounds each download attempt.
const DefaultTimeout = 30 * time.Second

// maxDownload is the largest structure file we're willing to hold in memory.
const maxDownload = 256 << 20

// NormalizeID checks that id looks like a PDB identifier and returns it in
// lower case.
func NormalizeID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) != 4 || id[0] < '1' || id[0] > '9' {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidID, id)
	}
	for i := 1; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') {
			return "", fmt.Errorf("%w: '%s'", ErrInvalidID, id)
		}
	}
	return id, nil
}

// Attempt records a failed download from one mirror.
type Attempt struct {
	URL string
	Err error
}

// FetchError is returned when no mirror could provide a structure.
type FetchError struct {
	ID       string
	Attempts []Attempt
}

func (e *FetchError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		msgs[i] = fmt.Sprintf("%s: %s", a.URL, a.Err)
	}
	return fmt.Sprintf("could not download '%s' (%s)",
		e.ID, strings.Join(msgs, "; "))
}

// Unwrap returns the error of every attempt.
func (e *FetchError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Download is a structure file retrieved from a mirror.
type Download struct {
	ID   string
	URL  string
	Name string // base name of the URL, e.g., "1abc.cif.gz"
	Data []byte
}

// Fetcher downloads structures by PDB identifier. The zero value uses
// http.DefaultClient, DefaultMirrors and DefaultTimeout.
type Fetcher struct {
	Client  *http.Client
	Mirrors []string
	Timeout time.Duration
}

// Fetch downloads the structure with the given identifier from the first
// mirror that has it. Mirrors are tried in order.
func (f *Fetcher) Fetch(ctx context.Context, id string) (Download, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return Download{}, err
	}

	mirrors := f.Mirrors
	if len(mirrors) == 0 {
		mirrors = DefaultMirrors
	}
	ferr := &FetchError{ID: id}
	for _, mirror := range mirrors {
		url := strings.Replace(mirror, "%s", id, -1)
		data, err := f.get(ctx, url)
		if err != nil {
			ferr.Attempts = append(ferr.Attempts, Attempt{url, err})
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return Download{
			ID:   id,
			URL:  url,
			Name: path.Base(url),
			Data: data,
		}, nil
	}
	return Download{}, ferr
}

// FetchEntry downloads and decodes the structure with the given identifier.
func (f *Fetcher) FetchEntry(
	ctx context.Context,
	id string,
) (*pdb.Entry, Download, error) {
	dl, err := f.Fetch(ctx, id)
	if err != nil {
		return nil, dl, err
	}
	entry, err := Decode(dl.Name, dl.Data)
	if err != nil {
		return nil, dl, err
	}
	return entry, dl, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownload {
		return nil, fmt.Errorf("file is larger than %d bytes", maxDownload)
	}
	return data, nil
}
