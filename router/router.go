package router

import (
	"context"
	"net/http"
	"time"

	"diarioweb/config/database"
	"diarioweb/internal/access"
	articleHandler "diarioweb/internal/article"
	articleRepo "diarioweb/internal/article/repository"
	articleService "diarioweb/internal/article/service"
	authHandler "diarioweb/internal/auth"
	diaryHandler "diarioweb/internal/diary"
	diaryRepo "diarioweb/internal/diary/repository"
	diaryService "diarioweb/internal/diary/service"
	"diarioweb/internal/diary/storage"
	textHandler "diarioweb/internal/text"
	textRepo "diarioweb/internal/text/repository"
	textService "diarioweb/internal/text/service"
	userRepo "diarioweb/internal/user/repository"
	"diarioweb/middleware"
	"diarioweb/pkg/logger"
	"diarioweb/pkg/response"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	DB                 *database.DB
	Gate               *access.Gate
	Blobs              storage.BlobStore
	LoginLimiter       *middleware.RateLimiter
	CorsAllowedOrigins []string
	MaxUploadBytes     int64
}

func Setup(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.CorsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:         300,
	}).Handler)

	texts := textHandler.NewTextHandler(textService.NewTextService(textRepo.NewTextRepository(d.DB), d.Gate))
	articles := articleHandler.NewArticleHandler(articleService.NewArticleService(articleRepo.NewArticleRepository(d.DB)))
	diary := diaryHandler.NewDiaryHandler(
		diaryService.NewDiaryService(diaryRepo.NewDiaryRepository(d.DB), userRepo.NewUserRepository(d.DB), d.Blobs),
		d.MaxUploadBytes,
	)
	auth := authHandler.NewAuthHandler(d.Gate)
	owner := func(h middleware.OwnerHandlerFunc) http.HandlerFunc {
		return middleware.RequireOwner(d.Gate, h)
	}

	r.Get("/", home)
	r.Get("/health", health(d.DB))
	r.Get("/protected", owner(auth.Protected))

	login := http.Handler(http.HandlerFunc(auth.Login))
	if d.LoginLimiter != nil {
		login = d.LoginLimiter.Limit(login)
	}
	r.Method(http.MethodPost, "/login", login)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/login", login)

		r.Route("/texts", func(r chi.Router) {
			r.Get("/", texts.ListTexts)
			r.Post("/", owner(texts.CreateText))
			r.Get("/{id}", texts.GetText)
			r.Put("/{id}", owner(texts.UpdateText))
			r.Delete("/{id}", owner(texts.DeleteText))
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articles.ListArticles)
			r.Post("/", owner(articles.CreateArticle))
			r.Get("/{id}", articles.GetArticle)
			r.Put("/{id}", owner(articles.UpdateArticle))
			r.Delete("/{id}", owner(articles.DeleteArticle))
		})

		r.Route("/diary", func(r chi.Router) {
			r.Post("/upload", owner(diary.Upload))
			r.Get("/list", owner(diary.List))
			r.Get("/download/{ref}", owner(diary.Download))
			r.Delete("/{id}", owner(diary.Delete))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
	return r
}

func home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello from the backend!"))
}

func health(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Sugar.Errorf("Health check failed: %v", err)
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
