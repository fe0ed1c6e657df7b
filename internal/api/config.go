package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"campusnav/pkg/config"
	"campusnav/pkg/store"
)

// ConfigHandler exposes the runtime-tunable settings. Reads report the
// effective values (store override or static fallback); writes persist
// overrides to the state store.
type ConfigHandler struct {
	provider config.Provider
	store    store.StateStore
}

func NewConfigHandler(provider config.Provider, st store.StateStore) *ConfigHandler {
	return &ConfigHandler{provider: provider, store: st}
}

// ConfigResponse is the effective runtime configuration.
type ConfigResponse struct {
	HeightCm         float64 `json:"height_cm"`
	StrideK          float64 `json:"stride_k"`
	StrideC          float64 `json:"stride_c"`
	TurnThresholdDeg float64 `json:"turn_threshold_deg"`
}

// ConfigUpdate carries partial overrides; absent fields stay untouched.
type ConfigUpdate struct {
	HeightCm         *float64 `json:"height_cm"`
	StrideK          *float64 `json:"stride_k"`
	StrideC          *float64 `json:"stride_c"`
	TurnThresholdDeg *float64 `json:"turn_threshold_deg"`
}

func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost, http.MethodPut:
		h.handleUpdate(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConfigHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, ConfigResponse{
		HeightCm:         h.provider.HeightCm(ctx),
		StrideK:          h.provider.StrideK(ctx),
		StrideC:          h.provider.StrideC(ctx),
		TurnThresholdDeg: h.provider.TurnThresholdDeg(ctx),
	})
}

func (h *ConfigHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "no state store configured", http.StatusServiceUnavailable)
		return
	}

	var upd ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if upd.HeightCm != nil && *upd.HeightCm <= 0 {
		http.Error(w, "height_cm must be positive", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	set := func(key string, val *float64) {
		if val == nil {
			return
		}
		if err := h.store.SetState(ctx, key, strconv.FormatFloat(*val, 'f', -1, 64)); err != nil {
			slog.Error("Failed to persist config override", "key", key, "error", err)
		}
	}
	set(config.KeyHeightCm, upd.HeightCm)
	set(config.KeyStrideK, upd.StrideK)
	set(config.KeyStrideC, upd.StrideC)
	set(config.KeyTurnThresholdDeg, upd.TurnThresholdDeg)

	h.handleGet(w, r)
}
