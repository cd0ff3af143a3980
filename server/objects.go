package server

import (
	"net/http"

	"github.com/tkrehbiel/activitynode/server/activity"
	"github.com/tkrehbiel/activitynode/server/storage"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

// ObjectReader serves stored activities and actors by id
type ObjectReader struct {
	table string
	store storage.Gateway
}

func NewObjectReader(table string, store storage.Gateway) *ObjectReader {
	return &ObjectReader{table: table, store: store}
}

func (o *ObjectReader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	telemetry.Request(r, "ObjectReader.ServeHTTP")
	telemetry.Increment("get_requests", 1)

	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, "application/json", errorResponse{Error: "missing id parameter"})
		return
	}
	rec, err := o.store.Get(r.Context(), o.table, id)
	if err != nil {
		telemetry.Error(err, "reading [%s] from table [%s]", id, o.table)
		writeJSON(w, http.StatusInternalServerError, "application/json", errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, "application/json", errorResponse{Error: "not found"})
		return
	}
	writeJSON(w, http.StatusOK, activity.ContentType, rec)
}
