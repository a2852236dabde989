package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

func (s *Server) searchPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var res *search.Result

	criteria, err := parseCriteria(r.URL.Query())
	if err == nil {
		res, err = s.searcher.Search(ctx, criteria)
	}

	if inputErr := search.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, inputErr.Fields())

		return
	}

	if err != nil {
		s.l.LogErrorf("Could not search properties: %v", err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	r.Handle(
		"GET /api/properties/search/v1",
		s.applyMiddlewares(http.HandlerFunc(s.searchPropertiesHandler), s.recoverMiddleware(), s.loggerMiddleware()),
	)
	r.Handle(
		fmt.Sprintf("GET %s", s.conf.LivenessEndpoint),
		s.applyMiddlewares(http.HandlerFunc(s.livenessHandler), s.recoverMiddleware(), s.loggerMiddleware()),
	)
}
