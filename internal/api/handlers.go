package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daktre/theta-data-explorer/internal/dataset"
	"github.com/daktre/theta-data-explorer/internal/filter"
	"github.com/daktre/theta-data-explorer/internal/models"
	"github.com/daktre/theta-data-explorer/internal/session"
)

const (
	defaultPageSize = 100
	previewRows     = 50
)

type Handler struct {
	sessions *session.Store
	client   *http.Client
}

func NewHandler(store *session.Store) *Handler {
	return &Handler{
		sessions: store,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.POST("/datasets", h.CreateDataset)
	api.POST("/sessions/:id/dataset", h.ReplaceDataset)
	api.GET("/sessions/:id/schema", h.GetSchema)
	api.GET("/sessions/:id/filters", h.GetFilters)
	api.PUT("/sessions/:id/filters", h.PutFilters)
	api.GET("/sessions/:id/preview", h.GetPreview)
	api.GET("/sessions/:id/rows", h.GetRows)
	api.GET("/sessions/:id/summary", h.GetSummary)
	api.GET("/sessions/:id/export", h.Export)
	api.DELETE("/sessions/:id", h.DeleteSession)
}

// --- HANDLERS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) session(c echo.Context) (*session.Session, error) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown or expired session")
	}
	return s, nil
}

// loadDataset reads a dataset from the request: either a multipart file
// upload under "file", or a JSON body naming a URL.
func (h *Handler) loadDataset(c echo.Context) (*dataset.Dataset, error) {
	if fh, err := c.FormFile("file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "open upload: "+err.Error())
		}
		defer src.Close()
		ds, err := dataset.FromReader(fh.Filename, src)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "could not parse upload: "+err.Error())
		}
		return ds, nil
	}

	var req models.LoadRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	if req.URL == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "upload a file or provide a url")
	}
	ds, err := dataset.FromURL(c.Request().Context(), h.client, req.URL)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadGateway, "could not load data from URL: "+err.Error())
	}
	return ds, nil
}

func (h *Handler) CreateDataset(c echo.Context) error {
	ds, err := h.loadDataset(c)
	if err != nil {
		return err
	}
	s := h.sessions.New(ds)
	return c.JSON(http.StatusCreated, datasetInfo(s.ID, ds))
}

// ReplaceDataset swaps the session's dataset. The load happens before the
// swap, so a failed load leaves the previous dataset active.
func (h *Handler) ReplaceDataset(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	ds, err := h.loadDataset(c)
	if err != nil {
		return err
	}
	s.ReplaceDataset(ds)
	return c.JSON(http.StatusOK, datasetInfo(s.ID, ds))
}

func (h *Handler) GetSchema(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	ds, _ := s.State()
	return c.JSON(http.StatusOK, datasetInfo(s.ID, ds))
}

func (h *Handler) GetFilters(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	_, fs := s.State()
	return c.JSON(http.StatusOK, fs)
}

func (h *Handler) PutFilters(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	var fs filter.Set
	if err := c.Bind(&fs); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.SetFilters(fs))
}

// GetPreview returns the first rows of the unfiltered dataset, the
// "what did I just load" view.
func (h *Handler) GetPreview(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	ds, _ := s.State()
	prev := ds.Preview(previewRows)

	page := models.RowsPage{
		Columns: ds.DF.Names(),
		Rows:    [][]string{},
		Matched: prev.Nrow(),
		Total:   ds.DF.Nrow(),
		Limit:   previewRows,
	}
	if recs := prev.Records(); len(recs) > 1 {
		page.Rows = recs[1:]
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetRows(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	ds, fs := s.State()
	filtered := filter.Apply(ds, fs)
	matched := filtered.Nrow()
	limit, offset := getPaginationParams(c, defaultPageSize)

	page := models.RowsPage{
		Columns: ds.DF.Names(),
		Rows:    [][]string{},
		Matched: matched,
		Total:   ds.DF.Nrow(),
		Limit:   limit,
		Offset:  offset,
	}
	if offset < matched {
		// Compare before adding: offset+limit can overflow with a huge
		// client-supplied limit.
		end := matched
		if limit < matched-offset {
			end = offset + limit
		}
		idx := make([]int, 0, end-offset)
		for i := offset; i < end; i++ {
			idx = append(idx, i)
		}
		sub := filtered.Subset(idx)
		if recs := sub.Records(); len(recs) > 1 {
			page.Rows = recs[1:]
		}
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) GetSummary(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	groupBy := c.QueryParam("group_by")
	if groupBy == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "group_by is required")
	}
	agg := c.QueryParam("agg")
	if agg == "" {
		agg = "mean"
	}

	ds, fs := s.State()
	filtered := filter.Apply(ds, fs)
	resp := models.Summary{
		GroupBy:     groupBy,
		Aggregation: agg,
		Columns:     []string{},
		Rows:        [][]string{},
	}
	// Nothing to summarise over zero rows; mirror the empty-table case.
	if filtered.Nrow() == 0 {
		return c.JSON(http.StatusOK, resp)
	}
	res, err := dataset.Summarize(filtered, groupBy, agg)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp.Columns = res.Names()
	if recs := res.Records(); len(recs) > 1 {
		resp.Rows = recs[1:]
	}
	return c.JSON(http.StatusOK, resp)
}

// Export streams the filtered subset as a CSV attachment: comma
// separated, header row, original column order.
func (h *Handler) Export(c echo.Context) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	ds, fs := s.State()
	filtered := filter.Apply(ds, fs)

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="filtered_subset.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return filtered.WriteCSV(c.Response())
}

func (h *Handler) DeleteSession(c echo.Context) error {
	h.sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// --- RESPONSE BUILDING ---

func datasetInfo(sessionID string, ds *dataset.Dataset) models.DatasetInfo {
	return models.DatasetInfo{
		SessionID: sessionID,
		Name:      ds.Name,
		Rows:      ds.DF.Nrow(),
		Cols:      ds.DF.Ncol(),
		Schema:    schemaMeta(ds),
	}
}

func schemaMeta(ds *dataset.Dataset) []models.ColumnMeta {
	out := make([]models.ColumnMeta, 0, len(ds.Schema))
	for _, c := range ds.Schema {
		m := models.ColumnMeta{
			Name:    c.Name,
			Kind:    string(c.Kind),
			Widget:  string(filter.WidgetFor(c)),
			Dtype:   c.Dtype,
			NUnique: c.NUnique,
			Values:  c.Values,
		}
		if c.HasRange() {
			lo, hi := c.Min, c.Max
			m.Min, m.Max = &lo, &hi
		}
		out = append(out, m)
	}
	return out
}
