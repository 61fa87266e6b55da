package handler

import (
	"net/http"

	"accidentsev/internal/docs"
)

// SwaggerDoc handles GET /swagger/doc.json
func SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := docs.Read()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
