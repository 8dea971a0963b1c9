package gql

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/pkg/httputil"
)

const maxBodyBytes = 1 << 20

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler executes GraphQL requests posted as JSON.
type Handler struct {
	schema graphql.Schema
	logger *slog.Logger
}

// NewHandler creates a handler for schema.
func NewHandler(schema graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

// ServeHTTP answers 400 with an error envelope when the body is not a
// GraphQL request. Otherwise the response is 200 and carries the
// execution result, including any field errors.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed request body: "+err.Error()), h.logger)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("query is required"), h.logger)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	if result.HasErrors() {
		h.logger.DebugContext(r.Context(), "graphql request returned errors",
			slog.String("operation", req.OperationName),
			slog.Int("errors", len(result.Errors)),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
