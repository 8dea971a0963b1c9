package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/validator"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The request was refused (empty cart, rejected order, unknown product)
	ExitCommandError = 2 // Bad usage or the storefront could not be reached
)

// ExitError carries the process exit code for a failed command. The
// message has already been written when it is returned.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics, kept off Writer so JSON stays parseable
	Verbose   bool
}

// Response is the JSON envelope for every command.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error part of a Response.
type ResponseError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success writes data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.encode(Response{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Error writes err and returns it wrapped in an ExitError.
func (f *OutputFormatter) Error(err error) error {
	body := describe(err)
	if f.Format == "json" {
		if encErr := f.encode(Response{Status: "error", Error: body}); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", body.Code, body.Message)
		if f.Verbose {
			fmt.Fprintf(f.errWriter(), "Details: %v\n", err)
		}
	}
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(r Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func describe(err error) *ResponseError {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		return &ResponseError{Code: "VALIDATION_ERROR", Message: ve.Error(), Fields: ve.Fields()}
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &ResponseError{Code: appErr.Code, Message: appErr.Message}
	}
	return &ResponseError{Code: "ERROR", Message: err.Error()}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return ExitCommandError
	case apperrors.IsUserFacing(err):
		return ExitFailure
	default:
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			return ExitFailure
		}
		return ExitCommandError
	}
}
