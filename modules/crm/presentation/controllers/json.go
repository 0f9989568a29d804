package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/stafflink/backoffice/pkg/httpapi"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", nil)
		return false
	}
	return true
}

func writeBadID(w http.ResponseWriter) {
	_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
}
