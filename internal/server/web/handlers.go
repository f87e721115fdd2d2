// Package web serves the photoshare HTML interface: gallery, login,
// registration, upload, download and delete.
package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/auth"
	"github.com/dmitrijs2005/photoshare/internal/server/blobstore"
	"github.com/dmitrijs2005/photoshare/internal/server/config"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

const visitorTTL = 10 * time.Minute

type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type PhotoService interface {
	Search(ctx context.Context, query string) ([]*models.PhotoView, error)
	Upload(ctx context.Context, owner *models.User, filename string, r io.Reader, size int64, description string) (*models.Photo, error)
	Open(ctx context.Context, filename string) (*models.Blob, error)
	RedirectsDownloads() bool
	DownloadURL(ctx context.Context, filename string) (string, error)
	Delete(ctx context.Context, actor *models.User, photoID string) error
}

type Handler struct {
	users    UserService
	photos   PhotoService
	sessions *auth.Sessions
	auth     *auth.Middleware
	limiter  *IPRateLimiter
	views    *renderer
	config   *config.Config
	logger   logging.Logger
}

func NewHandler(us UserService, ps PhotoService, sessions *auth.Sessions, mw *auth.Middleware, cfg *config.Config, l logging.Logger) (*Handler, error) {
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}

	return &Handler{
		users:    us,
		photos:   ps,
		sessions: sessions,
		auth:     mw,
		limiter:  NewIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, visitorTTL),
		views:    views,
		config:   cfg,
		logger:   l.With("module", "web"),
	}, nil
}

// Routes builds the router. Everything except login, registration, logout
// and the health probe requires a session. Forwarded client addresses are
// honoured only when the server is configured to sit behind a proxy.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	if h.config.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Get("/login", h.LoginForm)
	r.With(h.limiter.Limit).Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireAuth)

		r.Get("/", h.Gallery)
		r.Get("/upload", h.UploadForm)
		r.Post("/upload", h.Upload)
		r.Get("/download/{filename}", h.Download)
		r.Post("/delete/{photo_id}", h.Delete)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// Gallery lists photos, filtered by the optional search parameter.
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	query := r.URL.Query().Get("search")

	list, err := h.photos.Search(r.Context(), query)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageGallery, pageData{
		User:      u,
		Search:    query,
		Photos:    list,
		DeleteAny: !h.config.RestrictDeleteToOwner,
	})
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.CurrentUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, pageLogin, pageData{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.CurrentUser(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	username := r.PostFormValue("username")
	u, err := h.users.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.render(w, r, http.StatusUnauthorized, pageLogin, pageData{
				Flash:    "Invalid username or password",
				Username: username,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	if err := h.sessions.Login(w, u.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "user logged in", "user_id", u.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageRegister, pageData{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	_, err := h.users.Register(r.Context(), username, r.PostFormValue("password"))
	switch {
	case err == nil:
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
	case errors.Is(err, common.ErrorValidation):
		h.render(w, r, http.StatusBadRequest, pageRegister, pageData{
			Flash:    "Username and password are required",
			Username: username,
		})
	case errors.Is(err, common.ErrorAlreadyExists):
		h.render(w, r, http.StatusConflict, pageRegister, pageData{
			Flash:    "Username is already taken",
			Username: username,
		})
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) UploadForm(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	h.render(w, r, http.StatusOK, pageUpload, pageData{User: u, Accept: h.accept()})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	failed := func(status int, msg, description string) {
		h.render(w, r, status, pageUpload, pageData{
			User:        u,
			Flash:       msg,
			Description: description,
			Accept:      h.accept(),
		})
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			failed(http.StatusRequestEntityTooLarge, "File is too large", "")
			return
		}
		failed(http.StatusBadRequest, "No file part", "")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	description := r.FormValue("description")
	file, header, err := r.FormFile("file")
	if err != nil {
		failed(http.StatusBadRequest, "No selected file", description)
		return
	}
	defer file.Close()

	if _, err := h.photos.Upload(r.Context(), u, header.Filename, file, header.Size, description); err != nil {
		if errors.Is(err, common.ErrorInvalidFile) {
			failed(http.StatusBadRequest, "File type not allowed", description)
			return
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			failed(http.StatusConflict, "A photo with that file name already exists", description)
			return
		}
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Download streams the named blob as an attachment, or redirects to a
// presigned URL when the store supports it and redirect mode is on.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	if h.photos.RedirectsDownloads() {
		url, err := h.photos.DownloadURL(r.Context(), name)
		switch {
		case err == nil:
			http.Redirect(w, r, url, http.StatusFound)
			return
		case errors.Is(err, common.ErrorNotFound):
			http.NotFound(w, r)
			return
		}
		h.logger.Warn(r.Context(), "presign failed, streaming instead", "filename", name, "error", err)
	}

	b, err := h.photos.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}
	defer b.Body.Close()

	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Disposition", blobstore.AttachmentDisposition(name))
	if b.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(b.ContentLength, 10))
	}
	if _, err := io.Copy(w, b.Body); err != nil {
		h.logger.Warn(r.Context(), "download interrupted", "filename", name, "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	err := h.photos.Delete(r.Context(), u, chi.URLParam(r, "photo_id"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, common.ErrorForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) accept() string {
	exts := make([]string, len(h.config.AllowedExtensions))
	for i, e := range h.config.AllowedExtensions {
		exts[i] = "." + e
	}
	return strings.Join(exts, ",")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	if err := h.views.render(w, status, page, data); err != nil {
		h.logger.Error(r.Context(), "render failed", "page", page, "error", err)
	}
}

// serverError hides err from the client.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
