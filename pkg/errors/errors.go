package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
)

type ErrorLevel int

const (
	LevelFatal ErrorLevel = iota + 1
	LevelError
	LevelWarning
	LevelInfo
)

func (l ErrorLevel) String() string {
	return [...]string{"", "Fatal", "Error", "Warning", "Info"}[l]
}

type ApplicationError struct {
	Reference   string
	Title       string
	Detail      string
	RootCause   error
	Level       ErrorLevel
	OccurredAt  time.Time
	CallerTrace []string
}

func (e *ApplicationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s][%s] %s", e.OccurredAt.Format(time.RFC3339), e.Reference, e.Title)

	if e.Detail != "" {
		fmt.Fprintf(&b, " - %s", e.Detail)
	}

	if e.RootCause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.RootCause)
	}

	return b.String()
}

func (e *ApplicationError) Unwrap() error {
	return e.RootCause
}

func New(ref, title, detail string, cause error, level ErrorLevel) *ApplicationError {
	return &ApplicationError{
		Reference:   ref,
		Title:       title,
		Detail:      detail,
		RootCause:   cause,
		Level:       level,
		OccurredAt:  time.Now().UTC(),
		CallerTrace: captureCallerInfo(3),
	}
}

func Wrap(ref, title, detail string, cause error, level ErrorLevel) *ApplicationError {
	return New(ref, title, detail, cause, level)
}

// * Error taxonomy shared by the loader, the GitHub client and the stores
const (
	RefUpstream    = "UPSTREAM_ERROR"
	RefParse       = "PARSE_ERROR"
	RefNotFound    = "NOT_FOUND"
	RefUnavailable = "UNAVAILABLE"
)

// * Upstream reports a non-success response from a remote API
func Upstream(title, detail string, cause error) *ApplicationError {
	return New(RefUpstream, title, detail, cause, LevelError)
}

// * Parse reports malformed dates, JSON payloads or request bodies
func Parse(title, detail string, cause error) *ApplicationError {
	return New(RefParse, title, detail, cause, LevelError)
}

// * NotFound reports a missing local path or record
func NotFound(title, detail string, cause error) *ApplicationError {
	return New(RefNotFound, title, detail, cause, LevelInfo)
}

// * Unavailable reports an optional collaborator that was never configured
func Unavailable(title, detail string) *ApplicationError {
	return New(RefUnavailable, title, detail, nil, LevelWarning)
}

// * HasReference reports whether any ApplicationError in err's chain carries ref
func HasReference(err error, ref string) bool {
	for err != nil {
		var appErr *ApplicationError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Reference == ref {
			return true
		}
		err = appErr.RootCause
	}
	return false
}

func IsUpstream(err error) bool { return HasReference(err, RefUpstream) }
func IsParse(err error) bool    { return HasReference(err, RefParse) }
func IsNotFound(err error) bool { return HasReference(err, RefNotFound) }

func captureCallerInfo(skip int) []string {
	pc := make([]uintptr, 10)
	n := runtime.Callers(skip, pc)
	if n == 0 {
		return nil
	}

	pc = pc[:n]
	frames := runtime.CallersFrames(pc)

	var trace []string
	for {
		frame, more := frames.Next()
		trace = append(trace, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}

	return trace
}

type HTTPErrorResponse struct {
	Status     int       `json:"status"`
	ErrorRef   string    `json:"error_reference,omitempty"`
	Title      string    `json:"title"`
	Detail     string    `json:"detail,omitempty"`
	Resolution string    `json:"resolution,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var appErr *ApplicationError

	resp := HTTPErrorResponse{
		Status:    http.StatusInternalServerError,
		Title:     "An unexpected error occurred",
		Timestamp: time.Now().UTC(),
	}

	if errors.As(err, &appErr) {
		resp.ErrorRef = appErr.Reference
		resp.Title = appErr.Title
		resp.Detail = appErr.Detail

		switch {
		case appErr.Reference == RefNotFound:
			resp.Status = http.StatusNotFound
		case appErr.Reference == RefUpstream:
			resp.Status = http.StatusBadGateway
			resp.Resolution = "An upstream API did not answer successfully, try again later"
		case appErr.Reference == RefUnavailable:
			resp.Status = http.StatusServiceUnavailable
		default:
			resp.Status = statusForLevel(appErr.Level)
		}

		if appErr.Level == LevelFatal {
			resp.Resolution = "Please contact support with the error reference"
		} else if appErr.Level == LevelWarning {
			resp.Resolution = "Please review your request and try again"
		}
	} else {
		resp.Detail = err.Error()
	}

	logger.Error("%v", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

func statusForLevel(level ErrorLevel) int {
	switch level {
	case LevelError:
		return http.StatusBadRequest
	case LevelWarning:
		return http.StatusConflict
	case LevelInfo:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
