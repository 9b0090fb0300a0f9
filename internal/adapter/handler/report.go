package handler

import (
	"context"
	stdErrors "errors"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/errors"
	"github.com/johnquangdev/cyberon-reporter/internal/adapter/dto/common"
	reportDTO "github.com/johnquangdev/cyberon-reporter/internal/adapter/dto/report"
	"github.com/johnquangdev/cyberon-reporter/internal/adapter/presenter"
	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/reporting"
)

const (
	voiceFormField = "voice"

	HeaderRunID             = "X-Run-ID"
	HeaderTranscriptExcerpt = "X-Transcript-Excerpt"
	HeaderReportURL         = "X-Report-URL"
)

// ReportService is what the report handler needs from the reporting usecase
type ReportService interface {
	CreateReport(ctx context.Context, userID int64, source entities.RunSource, clip entities.AudioClip) *reporting.Result
	ListRuns(ctx context.Context, userID int64, limit int) ([]*entities.ReportRun, error)
	GetRun(ctx context.Context, userID int64, id uuid.UUID) (*entities.ReportRun, error)
}

// Report handles report-related HTTP requests
type Report struct {
	service        ReportService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, maxUploadBytes int64, logger *zap.Logger) *Report {
	return &Report{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreateReport handles POST /reports
// @Summary      Build an attendance report from a voice message
// @Description  Transcribes an Ogg/Opus voice message, extracts the attendance and returns an xlsx file
// @Tags         Reports
// @Accept       multipart/form-data
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        voice  formData  file  true  "Ogg/Opus voice message"
// @Success      200  {file}    binary  "Attendance spreadsheet"
// @Failure      400  {object}  map[string]interface{}  "Voice message missing"
// @Failure      413  {object}  map[string]interface{}  "Voice message too large"
// @Failure      422  {object}  map[string]interface{}  "Speech not recognized or report not understood"
// @Failure      429  {object}  map[string]interface{}  "Too many reports"
// @Router       /reports [post]
func (h *Report) CreateReport(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	clip, err := h.readVoice(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result := h.service.CreateReport(c.Request().Context(), userID, entities.RunSourceHTTP, clip)
	c.Response().Header().Set(HeaderRunID, result.RunID.String())

	success, ok := result.Outcome.(entities.Success)
	if !ok {
		return HandleError(h.logger, c, outcomeError(result.Outcome).WithDetail("run_id", result.RunID.String()))
	}

	h.logger.Info("✅ Report created",
		zap.String("run_id", result.RunID.String()),
		zap.Int64("user_id", userID),
		zap.String("filename", success.Artifact.Filename),
		zap.Int64("size", success.Artifact.Size()),
	)

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, contentDisposition(success.Artifact.Filename))
	header.Set(HeaderTranscriptExcerpt, url.QueryEscape(success.Excerpt))
	if result.DownloadURL != "" {
		header.Set(HeaderReportURL, result.DownloadURL)
	}

	return c.Blob(http.StatusOK, success.Artifact.ContentType, success.Artifact.Content)
}

// ListRuns handles GET /reports/runs
// @Summary      List recent report runs
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Maximum number of runs (1-100)"
// @Success      200  {object}  common.ListResponse  "Runs, newest first"
// @Failure      400  {object}  map[string]interface{}  "Invalid limit"
// @Failure      404  {object}  map[string]interface{}  "Run history disabled"
// @Router       /reports/runs [get]
func (h *Report) ListRuns(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req reportDTO.ListRunsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("limit must be a number"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	runs, err := h.service.ListRuns(c.Request().Context(), userID, req.Limit)
	if err != nil {
		if stdErrors.Is(err, reporting.ErrHistoryDisabled) {
			return HandleError(h.logger, c, errors.ErrNotFound("run history"))
		}
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list report runs", err))
	}

	items := presenter.ToRunResponses(runs)
	return HandleSuccess(h.logger, c, common.ListResponse{Data: items, Count: len(items)})
}

// GetRun handles GET /reports/runs/:id
// @Summary      Get one report run
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Run ID"
// @Success      200  {object}  report.RunResponse  "Run"
// @Failure      400  {object}  map[string]interface{}  "Invalid run ID"
// @Failure      404  {object}  map[string]interface{}  "Run not found or history disabled"
// @Router       /reports/runs/{id} [get]
func (h *Report) GetRun(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("run ID must be a valid UUID"))
	}

	run, err := h.service.GetRun(c.Request().Context(), userID, runID)
	if err != nil {
		switch {
		case stdErrors.Is(err, reporting.ErrHistoryDisabled):
			return HandleError(h.logger, c, errors.ErrNotFound("run history"))
		case stdErrors.Is(err, reporting.ErrRunNotFound):
			return HandleError(h.logger, c, errors.ErrNotFound("report run"))
		default:
			return HandleError(h.logger, c, errors.ErrDBQueryFailed("get report run", err))
		}
	}

	return HandleSuccess(h.logger, c, presenter.ToRunResponse(run))
}

// readVoice returns the uploaded clip, enforcing the upload limit
func (h *Report) readVoice(c echo.Context) (entities.AudioClip, error) {
	fh, err := c.FormFile(voiceFormField)
	if err != nil {
		if stdErrors.Is(err, http.ErrMissingFile) || stdErrors.Is(err, http.ErrNotMultipart) {
			return nil, errors.ErrMissingAudio()
		}
		return nil, errors.ErrInvalidPayload()
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return nil, errors.ErrAudioTooLarge(h.maxUploadBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxUploadBytes > 0 {
		r = io.LimitReader(f, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		return nil, errors.ErrAudioTooLarge(h.maxUploadBytes)
	}

	return entities.AudioClip(data), nil
}

// outcomeError maps a failed pipeline outcome to its API error
func outcomeError(o entities.Outcome) errors.AppError {
	switch v := o.(type) {
	case entities.NoSpeechRecognized:
		return errors.ErrNoSpeechRecognized(string(v.Status))
	case entities.ExtractionFailed:
		if stdErrors.Is(v.Cause, usecaseErrors.ErrUpstream) {
			return errors.ErrAIServiceUnavailable("llm", v.Cause)
		}
		return errors.ErrAIExtractionFailed(v.Cause).WithDetail("reason", v.Detail)
	case entities.RenderFailed:
		return errors.ErrReportGenerationFailed(v.Cause)
	default:
		return errors.ErrInternal(stdErrors.New("unexpected pipeline outcome"))
	}
}

// contentDisposition builds an attachment header that survives non-ASCII names
func contentDisposition(filename string) string {
	return `attachment; filename="report.xlsx"; filename*=UTF-8''` + url.PathEscape(filename)
}
