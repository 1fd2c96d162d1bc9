package intake

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/Sakshi281205/sleeppeddlers/pkg/handlers"
	"github.com/Sakshi281205/sleeppeddlers/pkg/routes"
)

// UploadRequest is the JSON upload body. Image is standard base64, optionally
// prefixed with a data URL header.
type UploadRequest struct {
	Image       string `json:"image"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Handler exposes the upload endpoint.
type Handler struct {
	stage   *Stage
	logger  *slog.Logger
	maxBody int64
}

func NewHandler(stage *Stage, logger *slog.Logger) *Handler {
	// base64 inflates by 4/3; leave headroom for the JSON envelope.
	maxBody := stage.Policy().MaxBytes*4/3 + 64<<10

	return &Handler{
		stage:   stage,
		logger:  logger.With("handler", "upload"),
		maxBody: maxBody,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/upload",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
		},
	}
}

// Upload accepts either a JSON body or a multipart form with an "image" file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	cmd, err := h.decode(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = ErrFileTooLarge
		}
		h.stage.metrics.Upload(err.Error())
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.stage.Upload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, UploadResponse{
		JobID:  doc.JobID,
		Status: string(doc.Status),
	})
}

func (h *Handler) decode(r *http.Request) (UploadCommand, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.decodeMultipart(r)
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return UploadCommand{}, err
		}
		return UploadCommand{}, ErrInvalidRequest
	}

	data, err := decodeImage(req.Image)
	if err != nil {
		return UploadCommand{}, ErrInvalidRequest
	}

	return UploadCommand{
		Data:        data,
		Filename:    req.Filename,
		ContentType: req.ContentType,
	}, nil
}

func (h *Handler) decodeMultipart(r *http.Request) (UploadCommand, error) {
	if err := r.ParseMultipartForm(h.stage.Policy().MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return UploadCommand{}, err
		}
		return UploadCommand{}, ErrInvalidRequest
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return UploadCommand{Filename: r.FormValue("filename")}, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return UploadCommand{}, ErrInvalidRequest
	}

	filename := r.FormValue("filename")
	if filename == "" {
		filename = header.Filename
	}
	contentType := r.FormValue("content_type")
	if contentType == "" {
		contentType = header.Header.Get("Content-Type")
	}

	return UploadCommand{
		Data:        data,
		Filename:    filename,
		ContentType: contentType,
	}, nil
}

func decodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	return base64.StdEncoding.DecodeString(s)
}
