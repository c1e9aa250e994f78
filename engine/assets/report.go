package assets

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Outcome int

const (
	OutcomeConverted Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverted:
		return "converted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the outcome of one file conversion.
type Result struct {
	Input   string
	Output  string
	Outcome Outcome
	Err     error
}

// DirResult is the outcome of creating one mirrored output directory.
type DirResult struct {
	Path string
	Err  error
}

// Report collects every per-item outcome of a directory conversion.
type Report struct {
	RunID       uuid.UUID
	Root        string
	OutputDir   string
	Elapsed     time.Duration
	Directories []DirResult
	Files       []Result
}

func (r *Report) count(o Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

func (r *Report) Converted() int { return r.count(OutcomeConverted) }

func (r *Report) Skipped() int { return r.count(OutcomeSkipped) }

func (r *Report) Failed() int { return r.count(OutcomeFailed) }

// DirectoryFailures counts output directories that could not be created.
func (r *Report) DirectoryFailures() int {
	n := 0
	for _, d := range r.Directories {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// Result returns the outcome recorded for input, if any.
func (r *Report) Result(input string) (Result, bool) {
	for _, f := range r.Files {
		if f.Input == input {
			return f, true
		}
	}
	return Result{}, false
}

// Err joins every directory and file error of the run, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, d := range r.Directories {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

func (r *Report) String() string {
	return fmt.Sprintf("%d converted, %d skipped, %d failed, %d directory errors in %s",
		r.Converted(), r.Skipped(), r.Failed(), r.DirectoryFailures(), r.Elapsed.Round(time.Millisecond))
}
