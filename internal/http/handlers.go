package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/resolver"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the data backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"resolver": "ok", "backend": "not_configured"}
	if s.resolver == nil {
		checks["resolver"] = "missing"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			checks["backend"] = "failed"
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}
	checks["writes"] = "disabled"
	if s.writer != nil {
		checks["writes"] = "enabled"
	}

	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

type kindOption struct {
	Kind        core.PeriodKind `json:"kind"`
	DisplayName string          `json:"display_name"`
}

type periodOptionsResponse struct {
	Kind        core.PeriodKind `json:"kind"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	Labels      []string        `json:"labels"`
	// Years is empty for annually, whose labels already are years.
	Years   []string       `json:"years,omitempty"`
	Default core.Selection `json:"default"`
	Kinds   []kindOption   `json:"kinds"`
}

// handlePeriodOptions lists the dropdown contents for a kind.
func (s *Server) handlePeriodOptions(w http.ResponseWriter, r *http.Request) {
	kind := core.Monthly
	if v := sanitizeInput(r.URL.Query().Get("kind")); v != "" {
		k, err := core.ParsePeriodKind(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = k
	}

	def, _ := core.DefaultSelection().WithKind(kind)
	resp := periodOptionsResponse{
		Kind:        kind,
		DisplayName: kind.DisplayName(),
		Description: kind.Description(),
		Labels:      core.Options(kind),
		Default:     def,
	}
	if kind != core.Annually {
		resp.Years = core.Years()
	}
	for _, k := range core.Kinds() {
		resp.Kinds = append(resp.Kinds, kindOption{Kind: k, DisplayName: k.DisplayName()})
	}
	writeJSON(w, http.StatusOK, resp)
}

type selectionRequest struct {
	Selection *core.Selection `json:"selection"`
	Event     core.Event      `json:"event"`
}

type selectionResponse struct {
	Selection core.Selection `json:"selection"`
	Period    string         `json:"period"`
}

// handleSelection applies one dropdown event to the caller's selection.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := ParseJSONBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel := core.DefaultSelection()
	if req.Selection != nil {
		sel = *req.Selection
	}
	sel.Kind = sel.Kind.Canonical()
	if err := sel.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	next, err := sel.Apply(req.Event)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{Selection: next, Period: next.Key().String()})
}

// handleDashboard resolves every dataset of a selection and returns the
// stat cards and chart payloads.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	d, err := s.resolver.Resolve(ctx, sel)
	if err != nil {
		s.resolveError(w, r, sel, err)
		return
	}
	s.logFallback(r.Context(), "chart", d.Chart.Resolution)
	s.logFallback(r.Context(), "stats", d.Stats.Resolution)
	s.logFallback(r.Context(), "breakdowns", d.Breakdowns.Resolution)

	writeJSON(w, http.StatusOK, buildDashboard(sel, d, r.URL.Query().Get("chart_type")))
}

// handleChartData returns the raw chart dataset of a selection.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.resolver.ResolveChartData(ctx, sel.Kind, sel.Label, sel.Year)
	if err != nil {
		s.resolveError(w, r, sel, err)
		return
	}
	s.logFallback(r.Context(), "chart", res.Resolution)
	writeJSON(w, http.StatusOK, res)
}

// handleStats returns the raw stats summary of a selection.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.resolver.ResolveStatsSummary(ctx, sel.Kind, sel.Label, sel.Year)
	if err != nil {
		s.resolveError(w, r, sel, err)
		return
	}
	s.logFallback(r.Context(), "stats", res.Resolution)
	writeJSON(w, http.StatusOK, res)
}

type putPeriodResponse struct {
	Period    string `json:"period"`
	Published bool   `json:"published"`
}

// handlePutPeriod stores a period record, drops its cached results and
// announces the change.
func (s *Server) handlePutPeriod(w http.ResponseWriter, r *http.Request) {
	if s.writer == nil {
		writeError(w, http.StatusNotImplemented, "the configured data backend is read-only")
		return
	}

	var rec core.PeriodRecord
	if err := ParseJSONBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec.Key = core.NewPeriodKey(rec.Key.Kind.Canonical(), sanitizeInput(rec.Key.Label), sanitizeInput(rec.Key.Year))
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	if err := s.writer.WritePeriod(ctx, rec); err != nil {
		s.eventsFor(ctx).LogError(ctx, "Failed to write period", err, applog.ComponentStorage, applog.OpWrite,
			applog.NewFields().WithPeriod(string(rec.Key.Kind), rec.Key.Label, rec.Key.Year, rec.Key.String()))
		writeError(w, http.StatusInternalServerError, "failed to store period")
		return
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, rec.Key)
	}

	published := false
	if s.publisher != nil {
		msg := amqp.NewPeriodRefreshMessage(rec.Key)
		if err := s.publisher.PublishPeriodRefresh(ctx, msg); err != nil {
			// the write is durable; other replicas catch up on cache expiry
			s.eventsFor(ctx).LogError(ctx, "Failed to publish period refresh", err, applog.ComponentAMQP, applog.OpPublish,
				applog.NewFields().WithPeriod(string(rec.Key.Kind), rec.Key.Label, rec.Key.Year, rec.Key.String()))
		} else {
			published = true
		}
	}

	applog.FromContext(ctx).InfoContext(ctx, "Period stored",
		applog.FieldPeriod, rec.Key.String(),
		"published", published)
	writeJSON(w, http.StatusOK, putPeriodResponse{Period: rec.Key.String(), Published: published})
}

func (s *Server) logFallback(ctx context.Context, dataset string, res resolver.Resolution) {
	if res.Fellback() {
		s.eventsFor(ctx).LogFallback(ctx, dataset, res.Requested.String(), res.Resolved.String())
	}
}

// resolveError maps resolver failures to a status; provider details stay
// in the log.
func (s *Server) resolveError(w http.ResponseWriter, r *http.Request, sel core.Selection, err error) {
	switch {
	case errors.Is(err, core.ErrUnknownPeriodKind):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		s.eventsFor(r.Context()).LogError(r.Context(), "Period data timed out", err, applog.ComponentResolver, applog.OpResolve,
			applog.NewFields().WithPeriod(string(sel.Kind), sel.Label, sel.Year, sel.Key().String()))
		writeError(w, http.StatusServiceUnavailable, "data provider timed out")
		return
	}
	s.eventsFor(r.Context()).LogError(r.Context(), "Failed to resolve period data", err, applog.ComponentResolver, applog.OpResolve,
		applog.NewFields().WithPeriod(string(sel.Kind), sel.Label, sel.Year, sel.Key().String()))
	writeError(w, http.StatusInternalServerError, "failed to load period data")
}

// eventsFor logs through the request logger, which carries the request ID.
func (s *Server) eventsFor(ctx context.Context) *applog.StructuredLogger {
	return applog.NewStructuredLogger(applog.FromContext(ctx))
}
