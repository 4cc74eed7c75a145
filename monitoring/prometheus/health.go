package prometheus

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/golang/gddo/httputil"
)

const (
	contentTypePlainText = "text/plain"
	contentTypeJSON      = "application/json"
)

// serviceStatus is the health of one registered service.
type serviceStatus struct {
	Name   string `json:"service"`
	Status bool   `json:"status"`
	Err    string `json:"error,omitempty"`
}

// healthResponse is the JSON body of /healthz.
type healthResponse struct {
	Healthy bool            `json:"healthy"`
	Data    []serviceStatus `json:"data"`
}

// negotiateContentType parses the Accept header, plain text is the default.
func negotiateContentType(r *http.Request) string {
	return httputil.NegotiateContentType(r, []string{contentTypePlainText, contentTypeJSON}, contentTypePlainText)
}

// statuses reports every registered service by type name.
func (s *Service) statuses() ([]serviceStatus, bool) {
	if s.svcRegistry == nil {
		return nil, true
	}
	healthy := true
	statuses := make([]serviceStatus, 0)
	for k, err := range s.svcRegistry.Statuses() {
		st := serviceStatus{Name: k.String(), Status: err == nil}
		if err != nil {
			healthy = false
			st.Err = err.Error()
		}
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses, healthy
}

func (s *Service) healthzHandler(w http.ResponseWriter, r *http.Request) {
	statuses, healthy := s.statuses()
	code := http.StatusOK
	if !healthy {
		code = http.StatusInternalServerError
	}

	if negotiateContentType(r) == contentTypeJSON {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(healthResponse{Healthy: healthy, Data: statuses}); err != nil {
			log.WithError(err).Error("Could not write health response")
		}
		return
	}

	w.Header().Set("Content-Type", contentTypePlainText)
	w.WriteHeader(code)
	for _, st := range statuses {
		status := "OK"
		if !st.Status {
			status = "ERROR " + st.Err
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", st.Name, status); err != nil {
			log.WithError(err).Error("Could not write health response")
			return
		}
	}
}
