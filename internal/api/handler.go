// Package api exposes the REST and websocket surface of the service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/unw4/TrustChain/internal/assets"
	"github.com/unw4/TrustChain/internal/scheduler"
	"github.com/unw4/TrustChain/internal/sui"
	"github.com/unw4/TrustChain/pkg/logger"
)

// defaultSimIntervalMillis matches the original simulation cadence.
const defaultSimIntervalMillis = 10_000

// handler bundles the HTTP endpoints over the command service.
type handler struct {
	svc *assets.Service
	log *logger.Logger
}

// NewRouter returns the API router. The websocket endpoint is registered
// separately by the caller so the hub stays out of this package's way.
func NewRouter(svc *assets.Service, log *logger.Logger) *mux.Router {
	if log == nil {
		log = logger.NewDefault("api")
	}
	h := &handler{svc: svc, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/aircraft", h.createAircraft).Methods(http.MethodPost)
	api.HandleFunc("/aircraft/owner/{address}", h.listAircraft).Methods(http.MethodGet)
	api.HandleFunc("/aircraft/{id}", h.getAircraft).Methods(http.MethodGet)
	api.HandleFunc("/aircraft/{id}/complete-flight", h.completeFlight).Methods(http.MethodPost)
	api.HandleFunc("/aircraft/{id}/change-status", h.changeAircraftStatus).Methods(http.MethodPost)

	api.HandleFunc("/parts", h.createPart).Methods(http.MethodPost)
	api.HandleFunc("/parts/owner/{address}", h.listParts).Methods(http.MethodGet)
	api.HandleFunc("/parts/{id}", h.getPart).Methods(http.MethodGet)
	api.HandleFunc("/parts/{id}/attach", h.attachPart).Methods(http.MethodPost)
	api.HandleFunc("/parts/{id}/transfer", h.transferPart).Methods(http.MethodPost)
	api.HandleFunc("/parts/{id}/update-hours", h.updatePartHours).Methods(http.MethodPost)
	api.HandleFunc("/parts/{id}/maintenance", h.performMaintenance).Methods(http.MethodPost)
	api.HandleFunc("/parts/{id}/activate", h.activatePart).Methods(http.MethodPost)

	api.HandleFunc("/buildings", h.createBuilding).Methods(http.MethodPost)
	api.HandleFunc("/buildings/owner/{address}", h.listBuildings).Methods(http.MethodGet)
	api.HandleFunc("/buildings/{id}", h.getBuilding).Methods(http.MethodGet)

	api.HandleFunc("/columns", h.createColumn).Methods(http.MethodPost)
	api.HandleFunc("/columns/owner/{address}", h.listColumns).Methods(http.MethodGet)
	api.HandleFunc("/columns/{id}", h.getColumn).Methods(http.MethodGet)

	api.HandleFunc("/sensors/reading", h.recordReading).Methods(http.MethodPost)
	api.HandleFunc("/sensors/part/{id}/readings", h.partReadings).Methods(http.MethodGet)
	api.HandleFunc("/sensors/simulate", h.listSimulations).Methods(http.MethodGet)
	api.HandleFunc("/sensors/simulate/{assetId}", h.startSimulation).Methods(http.MethodPost)
	api.HandleFunc("/sensors/simulate/{assetId}/{kind}", h.stopSimulation).Methods(http.MethodDelete)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// --- Aircraft ---------------------------------------------------------------

func (h *handler) createAircraft(w http.ResponseWriter, r *http.Request) {
	var req assets.CreateAircraftRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.CreateAircraft(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handler) getAircraft(w http.ResponseWriter, r *http.Request) {
	aircraft, err := h.svc.GetAircraft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aircraft)
}

func (h *handler) listAircraft(w http.ResponseWriter, r *http.Request) {
	aircraft, err := h.svc.ListAircraftByOwner(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aircraft)
}

func (h *handler) completeFlight(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FlightHours uint64 `json:"flightHours"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.CompleteFlight(r.Context(), mux.Vars(r)["id"], payload.FlightHours)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) changeAircraftStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.ChangeAircraftStatus(r.Context(), mux.Vars(r)["id"], payload.Status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Parts ------------------------------------------------------------------

func (h *handler) createPart(w http.ResponseWriter, r *http.Request) {
	var req assets.CreatePartRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.CreatePart(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handler) getPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.svc.GetPart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, part)
}

func (h *handler) listParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.ListPartsByOwner(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

func (h *handler) attachPart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ParentID   string `json:"parentId"`
		AircraftID string `json:"aircraftId"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.AttachPart(r.Context(), mux.Vars(r)["id"], payload.ParentID, payload.AircraftID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) transferPart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AircraftID string `json:"aircraftId"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.TransferPart(r.Context(), mux.Vars(r)["id"], payload.AircraftID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) updatePartHours(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AdditionalHours uint64 `json:"additionalHours"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.UpdatePartFlightHours(r.Context(), mux.Vars(r)["id"], payload.AdditionalHours)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) performMaintenance(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MaintenanceType      string `json:"maintenanceType"`
		NextMaintenanceHours uint64 `json:"nextMaintenanceHours"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.PerformMaintenance(r.Context(), mux.Vars(r)["id"], payload.MaintenanceType, payload.NextMaintenanceHours)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) activatePart(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ActivatePart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Buildings and columns --------------------------------------------------

func (h *handler) createBuilding(w http.ResponseWriter, r *http.Request) {
	var req assets.CreateBuildingRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.CreateBuilding(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handler) getBuilding(w http.ResponseWriter, r *http.Request) {
	building, err := h.svc.GetBuilding(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, building)
}

func (h *handler) listBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.svc.ListBuildingsByOwner(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildings)
}

func (h *handler) createColumn(w http.ResponseWriter, r *http.Request) {
	var req assets.CreateColumnRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.CreateColumn(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *handler) getColumn(w http.ResponseWriter, r *http.Request) {
	column, err := h.svc.GetColumn(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, column)
}

func (h *handler) listColumns(w http.ResponseWriter, r *http.Request) {
	columns, err := h.svc.ListColumnsByOwner(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, columns)
}

// --- Sensors ----------------------------------------------------------------

func (h *handler) recordReading(w http.ResponseWriter, r *http.Request) {
	var req assets.RecordReadingRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.svc.RecordReading(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) partReadings(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	readings, err := h.svc.PartReadings(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"readings": readings})
}

func (h *handler) startSimulation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Kind               string   `json:"kind"`
		IntervalSeconds    int64    `json:"intervalSeconds"`
		IntervalMillis     int64    `json:"intervalMillis"`
		BaseValue          float64  `json:"baseValue"`
		Variance           float64  `json:"variance"`
		AnomalyProbability *float64 `json:"anomalyProbability"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	intervalMillis := payload.IntervalMillis
	if intervalMillis == 0 && payload.IntervalSeconds != 0 {
		intervalMillis = payload.IntervalSeconds * 1000
	}
	if intervalMillis == 0 {
		intervalMillis = defaultSimIntervalMillis
	}

	job, err := h.svc.StartSimulation(r.Context(), assets.StartSimulationRequest{
		AssetID:            mux.Vars(r)["assetId"],
		Kind:               payload.Kind,
		IntervalMillis:     intervalMillis,
		BaseValue:          payload.BaseValue,
		Variance:           payload.Variance,
		AnomalyProbability: payload.AnomalyProbability,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *handler) stopSimulation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.StopSimulation(r.Context(), vars["assetId"], vars["kind"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listSimulations(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListSimulations(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// --- Helpers ----------------------------------------------------------------

// writeServiceError maps the ledger error taxonomy onto HTTP statuses.
func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sui.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, sui.ErrNotFound), errors.Is(err, scheduler.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, sui.ErrTransactionRejected):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, sui.ErrTransport):
		writeError(w, http.StatusBadGateway, err)
	default:
		h.log.WithError(err).Error("unhandled service error")
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
