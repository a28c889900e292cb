/*
scenarios.go - Named pricing scenarios for read-only previews

PURPOSE:
  Exposes the catalog's named scenarios and runs them through the same
  pipeline as checkout so the UI can display "what would this cost"
  tables. Previews perform only point-in-time reads; nothing is
  persisted, so loading the page never changes pricing state.

USAGE VIA API:

	GET  /api/pricing/scenarios          List scenario definitions
	POST /api/pricing/preview            Price all scenarios
	POST /api/pricing/preview {"ids": ["standard", "bulk"]}

SEE ALSO:
  - jobposting/scenarios.go: Scenario definitions
  - pricing/orchestrator.go: Preview implementation
*/
package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// ListScenarios returns the scenario definitions.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Scenarios)
}

// PreviewScenarios prices the named scenarios through the real pipeline.
// An empty or missing body previews every scenario.
func (h *Handler) PreviewScenarios(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	scenarios := h.Scenarios
	if len(req.IDs) > 0 {
		wanted := make(map[string]bool, len(req.IDs))
		for _, id := range req.IDs {
			wanted[id] = true
		}
		scenarios = scenarios[:0:0]
		for _, s := range h.Scenarios {
			if wanted[s.ID] {
				scenarios = append(scenarios, s)
			}
		}
		if len(scenarios) == 0 {
			writeError(w, http.StatusBadRequest, "Unknown scenario ids", nil)
			return
		}
	}

	previews, err := h.Orchestrator.Preview(r.Context(), scenarios)
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, previews)
}
