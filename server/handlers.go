package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/pipeline"
	"github.com/projecteru2/ovxview/types"
)

var errNotRendered = errors.New("not rendered yet")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusOf maps pipeline errors to HTTP status codes. Anything unknown
// came from the controller.
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrBadElementID):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUnknownLink), errors.Is(err, errNotRendered):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoNetwork):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// --- Views ---

func (s *Server) getPhysical(w http.ResponseWriter, _ *http.Request) {
	v := s.pipe.State().Physical()
	if v == nil {
		writeError(w, http.StatusNotFound, errNotRendered)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) getVirtual(w http.ResponseWriter, _ *http.Request) {
	v := s.pipe.State().Virtual()
	if v == nil {
		writeError(w, http.StatusNotFound, errNotRendered)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) highlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "elementID")
	ids, err := s.pipe.Mapping().Highlight(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"elementId": id, "physical": ids})
}

// --- Networks ---

func (s *Server) listNetworks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pipe.Networks())
}

type selectRequest struct {
	TenantID int `json:"tenantId"`
}

func (s *Server) selectNetwork(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if known := s.pipe.State().VirtualNetworks(); len(known) > 0 && !slices.Contains(known, req.TenantID) {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown virtual network %d", req.TenantID))
		return
	}
	log.WithFunc("server.selectNetwork").Infof(r.Context(), "select virtual network %d", req.TenantID)
	s.pipe.SelectNetwork(req.TenantID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Actions ---

type linkRequest struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

func (s *Server) toggleLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Src == "" || req.Dst == "" {
		writeError(w, http.StatusBadRequest, errors.New("src and dst are required"))
		return
	}
	act := s.pipe.LinkDown
	if chi.URLParam(r, "action") == "up" {
		act = s.pipe.LinkUp
	}
	if err := act(r.Context(), req.Src, req.Dst); err != nil {
		log.WithFunc("server.toggleLink").Errorf(r.Context(), err, "link %s %s-%s", chi.URLParam(r, "action"), req.Src, req.Dst)
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type pingRequest struct {
	TenantID int    `json:"tenantId"`
	Src      string `json:"src"`
	Dst      string `json:"dst"`
}

// tenantOr returns id, or the selected network when id is zero.
func (s *Server) tenantOr(id int) (int, error) {
	if id != 0 {
		return id, nil
	}
	sel, ok := s.pipe.State().Selected()
	if !ok {
		return 0, pipeline.ErrNoNetwork
	}
	return sel, nil
}

func (s *Server) startPing(w http.ResponseWriter, r *http.Request) {
	var req pingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Src == "" || req.Dst == "" {
		writeError(w, http.StatusBadRequest, errors.New("src and dst are required"))
		return
	}
	tenantID, err := s.tenantOr(req.TenantID)
	if err == nil {
		err = s.pipe.StartPing(r.Context(), tenantID, req.Src, req.Dst)
	}
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) stopPing(w http.ResponseWriter, r *http.Request) {
	id := 0
	if q := r.URL.Query().Get("tenantId"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("tenantId: %w", err))
			return
		}
		id = n
	}
	tenantID, err := s.tenantOr(id)
	if err == nil {
		err = s.pipe.StopPing(r.Context(), tenantID)
	}
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) pause(w http.ResponseWriter, _ *http.Request) {
	s.pipe.Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resume(w http.ResponseWriter, _ *http.Request) {
	s.pipe.Resume()
	w.WriteHeader(http.StatusNoContent)
}

// --- Flowtable ---

type flowtableRequest struct {
	ElementID string `json:"elementId"`
}

func (s *Server) selectFlowtable(w http.ResponseWriter, r *http.Request) {
	var req flowtableRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.pipe.SelectFlowtable(req.ElementID); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFlowtable(w http.ResponseWriter, _ *http.Request) {
	ft := s.pipe.State().Flowtable()
	if ft == nil {
		writeError(w, http.StatusNotFound, errors.New("no flowtable selected"))
		return
	}
	writeJSON(w, http.StatusOK, ft)
}

// --- Status ---

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pipe.State().Stats())
}

type viewerConfig struct {
	Backend        string `json:"backend"`
	NoPolling      bool   `json:"nopolling"`
	Skin           string `json:"skin"`
	RetryInterval  string `json:"retryInterval"`
	UpdateInterval string `json:"updateInterval"`
}

// viewerConfig echoes the viewer's URL flags: nopolling is decided by the
// daemon, s picks the skin.
func (s *Server) viewerConfig(w http.ResponseWriter, r *http.Request) {
	skin := s.conf.Skin
	if q := r.URL.Query().Get("s"); q != "" {
		skin = q
	}
	writeJSON(w, http.StatusOK, viewerConfig{
		Backend:        s.conf.Backend,
		NoPolling:      s.conf.NoPolling,
		Skin:           skin,
		RetryInterval:  s.conf.RetryInterval.String(),
		UpdateInterval: s.conf.UpdateInterval.String(),
	})
}
