package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
)

// remoteError matches the error envelope written by pkg/httputil.
type remoteError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// converts it to an AppError. service names the remote side in messages.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	message := http.StatusText(resp.StatusCode)
	var remote remoteError
	if json.Unmarshal(body, &remote) == nil && remote.Error != nil {
		message = remote.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: qualified, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.Rejected(qualified)
	case resp.StatusCode >= 500:
		return apperrors.Unavailable(qualified, fmt.Errorf("status %d", resp.StatusCode))
	default:
		return &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: qualified, Status: resp.StatusCode}
	}
}
