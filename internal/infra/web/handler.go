package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"certificados_dashboard/internal/app"
	"certificados_dashboard/internal/domain/certificate"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	msgQueryFailed = "No fue posible consultar los certificados. Intente más tarde."
	msgUnavailable = "No hay conexión con la base de datos. Intente más tarde."
)

// ReportService is what the dashboard needs from the application layer.
type ReportService interface {
	Report(ctx context.Context, dr certificate.DateRange) (certificate.ResultSet, error)
	Export(ctx context.Context, dr certificate.DateRange) (*certificate.ExportArtifact, error)
}

// Handler serves the dashboard page, the JSON API and spreadsheet downloads.
type Handler struct {
	service ReportService
	logger  *logrus.Entry
	now     func() time.Time
}

func NewHandler(service ReportService, logger *logrus.Entry) *Handler {
	return &Handler{service: service, logger: logger, now: time.Now}
}

type indexPage struct {
	Desde           string
	Hasta           string
	Columns         []string
	Rows            [][]string
	ExportURL       string
	Unavailable     bool
	ValidationError string
	QueryError      string
}

// Index renders the filter form and the results table.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	logCtx := h.requestLogger(r)
	page := indexPage{}

	dr, err := h.dateRange(r)
	page.Desde = r.URL.Query().Get("desde")
	page.Hasta = r.URL.Query().Get("hasta")
	if err == nil {
		page.Desde = dr.Start.Format(certificate.InputLayout)
		page.Hasta = dr.End.Format(certificate.InputLayout)
	}

	status := http.StatusOK
	if err != nil {
		page.ValidationError = validationMessage(err)
		status = http.StatusBadRequest
	} else {
		rs, err := h.service.Report(r.Context(), dr)
		switch {
		case errors.Is(err, certificate.ErrInvalidDateRange):
			page.ValidationError = validationMessage(err)
			status = http.StatusBadRequest
		case err != nil:
			logCtx.WithError(err).Error("Failed to load certificates for page")
			page.QueryError = msgQueryFailed
			status = http.StatusInternalServerError
		default:
			page.Columns = rs.Columns
			page.Rows = formatRows(rs)
			page.Unavailable = rs.Unavailable
			page.ExportURL = exportURL(dr)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		logCtx.WithError(err).Error("Failed to render dashboard")
	}
}

type certificatesResponse struct {
	Desde       string   `json:"desde"`
	Hasta       string   `json:"hasta"`
	Columns     []string `json:"columns"`
	Rows        [][]any  `json:"rows"`
	Count       int      `json:"count"`
	Unavailable bool     `json:"unavailable"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Certificates handles GET /api/certificados.
func (h *Handler) Certificates(w http.ResponseWriter, r *http.Request) {
	dr, err := h.dateRange(r)
	if err == nil {
		var rs certificate.ResultSet
		rs, err = h.service.Report(r.Context(), dr)
		if err == nil {
			render.JSON(w, r, certificatesResponse{
				Desde:       dr.Start.Format(certificate.InputLayout),
				Hasta:       dr.End.Format(certificate.InputLayout),
				Columns:     rs.Columns,
				Rows:        jsonRows(rs),
				Count:       rs.Len(),
				Unavailable: rs.Unavailable,
			})
			return
		}
	}

	if errors.Is(err, certificate.ErrInvalidDateRange) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	h.requestLogger(r).WithError(err).Error("Failed to load certificates")
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, errorResponse{Error: msgQueryFailed})
}

// Export streams the spreadsheet for the requested range.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	logCtx := h.requestLogger(r)

	dr, err := h.dateRange(r)
	if err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	artifact, err := h.service.Export(r.Context(), dr)
	switch {
	case errors.Is(err, certificate.ErrInvalidDateRange):
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	case errors.Is(err, app.ErrNoRecords):
		http.Error(w, "No se encontraron registros para el rango de fechas seleccionado.", http.StatusNotFound)
		return
	case errors.Is(err, certificate.ErrNoConnection):
		logCtx.WithError(err).Warn("Export requested while database is unavailable")
		http.Error(w, msgUnavailable, http.StatusServiceUnavailable)
		return
	case err != nil:
		logCtx.WithError(err).Error("Failed to export certificates")
		http.Error(w, "Error al generar el archivo Excel.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		logCtx.WithError(err).Warn("Client went away during download")
	}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// dateRange reads desde/hasta, falling back to January 1st and today.
func (h *Handler) dateRange(r *http.Request) (certificate.DateRange, error) {
	def := certificate.DefaultDateRange(h.now())
	q := r.URL.Query()

	start, end := def.Start.Format(certificate.InputLayout), def.End.Format(certificate.InputLayout)
	if v := q.Get("desde"); v != "" {
		start = v
	}
	if v := q.Get("hasta"); v != "" {
		end = v
	}
	dr, err := certificate.ParseDateRange(certificate.InputLayout, start, end)
	if err != nil {
		return certificate.DateRange{}, err
	}
	if err := dr.Validate(); err != nil {
		return certificate.DateRange{}, err
	}
	return dr, nil
}

func (h *Handler) requestLogger(r *http.Request) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	})
}

func validationMessage(err error) string {
	if errors.Is(err, certificate.ErrInvalidDate) {
		return "Error: Fecha inválida, use el formato AAAA-MM-DD. (" + err.Error() + ")"
	}
	if errors.Is(err, certificate.ErrInvalidDateRange) {
		return "Error: La fecha 'Desde' no puede ser posterior a la fecha 'Hasta'. (" + err.Error() + ")"
	}
	return err.Error()
}

func exportURL(dr certificate.DateRange) string {
	q := url.Values{}
	q.Set("desde", dr.Start.Format(certificate.InputLayout))
	q.Set("hasta", dr.End.Format(certificate.InputLayout))
	return "/export?" + q.Encode()
}

func formatRows(rs certificate.ResultSet) [][]string {
	rows := make([][]string, 0, rs.Len())
	for _, rec := range rs.Records {
		row := make([]string, len(rec))
		for i, v := range rec {
			switch t := v.(type) {
			case nil:
				row[i] = ""
			case time.Time:
				row[i] = t.Format(certificate.InputLayout)
			default:
				row[i] = fmt.Sprint(t)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func jsonRows(rs certificate.ResultSet) [][]any {
	rows := make([][]any, 0, rs.Len())
	for _, rec := range rs.Records {
		row := make([]any, len(rec))
		for i, v := range rec {
			if t, ok := v.(time.Time); ok {
				row[i] = t.Format(certificate.InputLayout)
				continue
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows
}
