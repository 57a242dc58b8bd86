package csvconvert

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/csvview/pkg/core"
)

type errorBody struct {
	Error string `json:"error"`
}

// ServeHTTP handles GET /api/csv-convert?dataset=<id>.
func (c *Converter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := core.DatasetID(r.URL.Query().Get("dataset"))
	if id == "" {
		id = core.DefaultDataset
	}

	rows, err := c.Load(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		msg := err.Error()
		switch {
		case errors.Is(err, ErrUnknownDataset):
			status, msg = http.StatusBadRequest, ErrUnknownDataset.Error()
		case errors.Is(err, ErrSourceNotFound):
			status, msg = http.StatusNotFound, ErrSourceNotFound.Error()
		default:
			c.logger.Error("csv conversion failed", "dataset", id, "error", err)
		}
		writeJSONError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := core.EncodeRows(w, rows); err != nil {
		c.logger.Error("failed to write rows", "dataset", id, "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(errorBody{Error: msg})
}
