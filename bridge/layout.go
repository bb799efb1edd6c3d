package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hako/durafmt"

	"gamescale/platform"
	"gamescale/profiles"
	"gamescale/scaler"
)

// writeJSON encodes v before writing the header so an unencodable value
// turns into a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		data, _ = json.Marshal(map[string]string{"error": err.Error()})
		w.Write(append(data, '\n'))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleLayout computes one layout from query parameters.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cfg, err := configFromQuery(q, s.opts.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := reportFromQuery(q, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	host := platform.NewStatic(0, 0)
	g, ev, err := rep.Geometry()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	host.Set(g, ev)
	sc, err := scaler.New(host, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, sc.State())
}

// handleProfiles lays the configured canvas out on every device profile.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	cfg, err := configFromQuery(r.URL.Query(), s.opts.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := profiles.Build(cfg, s.opts.Profiles, 4)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type sessionInfo struct {
	ID     string  `json:"id"`
	Uptime string  `json:"uptime"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := make([]sessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sessionInfo{
			ID:     sess.id,
			Uptime: durafmt.Parse(time.Since(sess.started).Round(time.Second)).LimitFirstN(2).String(),
			Scale:  sess.sc.State().Scale,
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime":   durafmt.Parse(time.Since(s.started).Round(time.Second)).LimitFirstN(2).String(),
		"sessions": list,
	})
}

func queryFloat(q url.Values, key string) (float64, bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parameter %s: %q is not a number", key, raw)
	}
	return v, true, nil
}

func queryBool(q url.Values, key string) (bool, bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("parameter %s: %q is not a boolean", key, raw)
	}
	return v, true, nil
}

// reportFromQuery reads w, h, dpr, vw, vh and the four inset sides.
func reportFromQuery(q url.Values, requireSize bool) (platform.Report, error) {
	var rep platform.Report
	width, okW, err := queryFloat(q, "w")
	if err != nil {
		return rep, err
	}
	height, okH, err := queryFloat(q, "h")
	if err != nil {
		return rep, err
	}
	if requireSize && (!okW || !okH) {
		return rep, fmt.Errorf("parameters w and h are required")
	}
	rep.Window = scaler.Size{Width: width, Height: height}
	rep.Event = q.Get("event")

	if rep.DPR, _, err = queryFloat(q, "dpr"); err != nil {
		return rep, err
	}

	vw, okVW, err := queryFloat(q, "vw")
	if err != nil {
		return rep, err
	}
	vh, okVH, err := queryFloat(q, "vh")
	if err != nil {
		return rep, err
	}
	if okVW && okVH {
		rep.Visual = &scaler.Size{Width: vw, Height: vh}
	}

	var in scaler.Insets
	found := false
	for _, side := range []struct {
		key string
		dst *float64
	}{{"top", &in.Top}, {"right", &in.Right}, {"bottom", &in.Bottom}, {"left", &in.Left}} {
		v, ok, err := queryFloat(q, side.key)
		if err != nil {
			return rep, err
		}
		if ok {
			*side.dst = v
			found = true
		}
	}
	if found {
		rep.Insets = &in
	}
	return rep, nil
}

// configFromQuery overlays lw, lh, min, max, padding, aspect, safe and
// debounce (milliseconds) on base.
func configFromQuery(q url.Values, base scaler.Config) (scaler.Config, error) {
	var patch scaler.ConfigPatch
	lw, okLW, err := queryFloat(q, "lw")
	if err != nil {
		return base, err
	}
	lh, okLH, err := queryFloat(q, "lh")
	if err != nil {
		return base, err
	}
	if okLW || okLH {
		size := base.LogicalSize
		if okLW {
			size.Width = lw
		}
		if okLH {
			size.Height = lh
		}
		patch.LogicalSize = &size
	}
	for _, f := range []struct {
		key string
		dst **float64
	}{{"min", &patch.MinScale}, {"max", &patch.MaxScale}, {"padding", &patch.Padding}} {
		v, ok, err := queryFloat(q, f.key)
		if err != nil {
			return base, err
		}
		if ok {
			*f.dst = scaler.Ptr(v)
		}
	}
	for _, f := range []struct {
		key string
		dst **bool
	}{{"aspect", &patch.MaintainAspectRatio}, {"safe", &patch.EnableSafeArea}} {
		v, ok, err := queryBool(q, f.key)
		if err != nil {
			return base, err
		}
		if ok {
			*f.dst = scaler.Ptr(v)
		}
	}
	ms, ok, err := queryFloat(q, "debounce")
	if err != nil {
		return base, err
	}
	if ok {
		patch.Debounce = scaler.Ptr(time.Duration(ms * float64(time.Millisecond)))
	}

	cfg := patch.Apply(base)
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}
