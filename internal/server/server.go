// Package server exposes the projection engine over HTTP: a stateless
// calculation endpoint, the current plan's ledger and report, and the usual
// health and version probes.
package server

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/lifeplan/lifeplan/internal/calculation"
	"github.com/lifeplan/lifeplan/internal/config"
	"github.com/lifeplan/lifeplan/internal/domain"
	"github.com/lifeplan/lifeplan/internal/output"
	"github.com/lifeplan/lifeplan/internal/store"
)

// maxBodyBytes bounds POST bodies; a plan document is small.
const maxBodyBytes = 1 << 20

// Server serves the projection API around one plan store.
type Server struct {
	store   *store.PlanStore
	parser  *config.InputParser
	logger  *zap.Logger
	version string
}

// New creates a server. A nil logger disables logging.
func New(st *store.PlanStore, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:   st,
		parser:  config.NewInputParser(),
		logger:  logger,
		version: version,
	}
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "lifeplan",
		MaxRequestBodySize: maxBodyBytes,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
	}
	s.logger.Info("server listening", zap.String("addr", addr))
	return srv.ListenAndServe(addr)
}

// Handler returns the request router.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		path := string(ctx.Path())

		switch path {
		case "/healthz":
			s.handleHealth(ctx)
		case "/api/version":
			s.handleVersion(ctx)
		case "/api/ledger":
			s.handleLedger(ctx)
		case "/report":
			s.handleReport(ctx)
		default:
			s.writeError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("no route for %s", path))
		}

		s.logger.Debug("request served",
			zap.String("method", string(ctx.Method())),
			zap.String("path", path),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"version": s.version})
}

// handleLedger serves the stored ledger on GET and runs a stateless
// calculation on POST: the body is a full plan document, the response its
// freshly built ledger. The posted plan never touches the store.
func (s *Server) handleLedger(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Method()) {
	case fasthttp.MethodGet:
		s.writeLedger(ctx, s.store.Plan(), s.store.Ledger())

	case fasthttp.MethodPost:
		body := ctx.PostBody()
		if len(body) == 0 {
			s.writeError(ctx, fasthttp.StatusBadRequest, "empty request body")
			return
		}
		if len(body) > maxBodyBytes {
			s.writeError(ctx, fasthttp.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		var plan domain.Plan
		if err := json.Unmarshal(body, &plan); err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, "invalid plan document: "+err.Error())
			return
		}
		s.parser.Normalize(&plan)
		if err := s.parser.ValidatePlan(&plan); err != nil {
			s.writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
			return
		}

		engine := calculation.NewEngineWith(plan.CorporateSettings(), s.logger)
		s.writeLedger(ctx, &plan, engine.BuildLedger(&plan))

	default:
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "use GET or POST")
	}
}

func (s *Server) handleReport(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "use GET")
		return
	}

	format := string(ctx.QueryArgs().Peek("format"))
	if format == "" {
		format = "html"
	}

	data := &output.ReportData{
		Plan:        s.store.Plan(),
		Ledger:      s.store.Ledger(),
		GeneratedAt: time.Now(),
	}
	body, err := output.Render(data, format)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	switch format {
	case "html":
		ctx.SetContentType("text/html; charset=utf-8")
	case "json":
		ctx.SetContentType("application/json")
	case "csv":
		ctx.SetContentType("text/csv")
	default:
		ctx.SetContentType("text/plain; charset=utf-8")
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

type ledgerResponse struct {
	StartYear      int                 `json:"startYear"`
	EndYear        int                 `json:"endYear"`
	Rows           []domain.YearLedger `json:"rows"`
	FinalNetAssets string              `json:"finalNetAssets"`
}

func (s *Server) writeLedger(ctx *fasthttp.RequestCtx, plan *domain.Plan, ledger domain.Ledger) {
	resp := ledgerResponse{
		StartYear:      plan.BasicInfo.StartYear,
		EndYear:        plan.BasicInfo.EndYear(),
		Rows:           ledger.Rows(),
		FinalNetAssets: ledger.FinalNetAssets().StringFixed(1),
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("response marshal failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	s.writeJSON(ctx, status, map[string]interface{}{
		"status":  status,
		"message": message,
	})
}
