// Package scanner checks batches of Odin files in the background.
//
// Requests are queued and processed one at a time; the files of a
// request are parsed by a fixed number of workers. Progress can be
// polled with Get while a request runs.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/odinsyntax/odin/codebase"
	"github.com/dhamidi/odinsyntax/odin/parser"
)

var log = commonlog.GetLogger("odinsyntax.scanner")

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Request names what to scan: a directory walked for .odin files, an
// explicit list of files, or both.
type Request struct {
	ID        string
	Path      string
	Files     []string
	CreatedAt time.Time
}

// FileResult is the outcome of parsing one file.
type FileResult struct {
	Path        string
	Nodes       int
	Diagnostics []codebase.Diagnostic
	Duration    time.Duration
	Err         string
}

func (f FileResult) OK() bool {
	return f.Err == "" && len(f.Diagnostics) == 0
}

type Result struct {
	ID        string
	Status    Status
	Request   Request
	Files     []FileResult
	Error     string
	Errors    []string
	StartedAt time.Time
	EndedAt   time.Time
	Progress  int
	Total     int
}

func (s *Result) ProgressPercent() int {
	if s.Total == 0 {
		return 0
	}
	return (s.Progress * 100) / s.Total
}

// Done reports whether the scan has finished, successfully or not.
func (s *Result) Done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// Failed returns the files that could not be read or have syntax
// errors.
func (s *Result) Failed() []FileResult {
	var out []FileResult
	for _, f := range s.Files {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

type Scanner struct {
	mu       sync.RWMutex
	scans    map[string]*Result
	requests chan Request
	nextID   int
	codebase *codebase.Codebase
	workers  int
}

// New starts a scanner that stores parsed files in c and parses with
// the given number of workers per request.
func New(c *codebase.Codebase, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	s := &Scanner{
		scans:    make(map[string]*Result),
		requests: make(chan Request, 100),
		codebase: c,
		workers:  workers,
	}
	go s.run()
	return s
}

func (s *Scanner) run() {
	for req := range s.requests {
		s.processScan(req)
	}
}

func (s *Scanner) processScan(req Request) {
	s.mu.Lock()
	result := s.scans[req.ID]
	result.Status = StatusInProgress
	result.StartedAt = time.Now()
	s.mu.Unlock()

	files := append([]string(nil), req.Files...)
	var errors []string
	if req.Path != "" {
		found, walkErrors := collectFiles(req.Path)
		files = append(files, found...)
		errors = append(errors, walkErrors...)
	}
	if len(files) == 0 && len(errors) == 0 {
		errors = append(errors, "no .odin files to scan")
	}

	s.mu.Lock()
	result.Total = len(files)
	s.mu.Unlock()

	results := s.scanFiles(req.ID, files)
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	s.mu.Lock()
	defer s.mu.Unlock()
	result.EndedAt = time.Now()
	result.Files = results
	result.Errors = errors
	if len(errors) > 0 && len(results) == 0 {
		result.Status = StatusFailed
		result.Error = errors[0]
	} else {
		result.Status = StatusCompleted
	}
	log.Infof("scan %s: %d files in %s", req.ID, len(results), result.EndedAt.Sub(result.StartedAt))
}

func collectFiles(path string) ([]string, []string) {
	var files []string
	var errors []string
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			errors = append(errors, fmt.Sprintf("walk %s: %v", p, err))
			return nil
		}
		if info.IsDir() {
			if p != path && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == codebase.Ext {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		errors = append(errors, fmt.Sprintf("walk %s: %v", path, err))
	}
	return files, errors
}

func (s *Scanner) scanFiles(id string, files []string) []FileResult {
	jobs := make(chan string)
	out := make(chan FileResult)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out <- s.scanFile(path)
			}
		}()
	}
	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	results := make([]FileResult, 0, len(files))
	for r := range out {
		results = append(results, r)
		s.mu.Lock()
		s.scans[id].Progress = len(results)
		s.mu.Unlock()
	}
	return results
}

func (s *Scanner) scanFile(path string) FileResult {
	start := time.Now()
	f, err := s.codebase.ScanFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err.Error(), Duration: time.Since(start)}
	}
	nodes := 0
	f.Tree.Root.Walk(func(*parser.Node) bool {
		nodes++
		return true
	})
	return FileResult{
		Path:        path,
		Nodes:       nodes,
		Diagnostics: f.Diagnostics(),
		Duration:    time.Since(start),
	}
}

// Submit registers the scan and queues it. It blocks while the queue is
// full, without holding the lock workers need to report progress.
func (s *Scanner) Submit(req Request) string {
	s.mu.Lock()
	s.nextID++
	req.ID = strconv.Itoa(s.nextID)
	req.CreatedAt = time.Now()

	s.scans[req.ID] = &Result{
		ID:      req.ID,
		Status:  StatusPending,
		Request: req,
	}
	s.mu.Unlock()

	s.requests <- req
	return req.ID
}

// Get returns a snapshot of the scan with the given id.
func (s *Scanner) Get(id string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.scans[id]
	if !ok {
		return nil, false
	}
	snapshot := *result
	return &snapshot, true
}

// Wait polls until the scan finishes or ctx is done.
func (s *Scanner) Wait(ctx context.Context, id string) (*Result, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		result, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown scan %s", id)
		}
		if result.Done() {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}

// List returns snapshots of all scans in submission order.
func (s *Scanner) List() []*Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]*Result, 0, len(s.scans))
	for _, r := range s.scans {
		snapshot := *r
		results = append(results, &snapshot)
	}
	sort.Slice(results, func(i, j int) bool {
		a, _ := strconv.Atoi(results[i].ID)
		b, _ := strconv.Atoi(results[j].ID)
		return a < b
	})
	return results
}
