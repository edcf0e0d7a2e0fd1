package http

import (
	"net/http"

	"imagulator/internal/delivery/http/handler"
	"imagulator/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router          *mux.Router
	authHandler     *handler.AuthHandler
	patientHandler  *handler.PatientHandler
	flywheelHandler *handler.FlywheelHandler
	jobHandler      *handler.JobHandler
	viewerHandler   *handler.ViewerHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	flywheelHandler *handler.FlywheelHandler,
	jobHandler *handler.JobHandler,
	viewerHandler *handler.ViewerHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		authHandler:     authHandler,
		patientHandler:  patientHandler,
		flywheelHandler: flywheelHandler,
		jobHandler:      jobHandler,
		viewerHandler:   viewerHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", r.authHandler.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Patient records (protected)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.HandleFunc("", r.patientHandler.CreatePatient).Methods(http.MethodPost)
	patients.HandleFunc("", r.patientHandler.ListPatients).Methods(http.MethodGet)
	patients.HandleFunc("/{code}/images", r.patientHandler.ListImages).Methods(http.MethodGet)

	// External acquisition bridge
	fw := api.PathPrefix("/flywheel").Subrouter()
	fw.HandleFunc("/status", r.flywheelHandler.Status).Methods(http.MethodGet)
	fw.HandleFunc("/acquisition/{id}", r.flywheelHandler.GetAcquisition).Methods(http.MethodGet)
	fw.HandleFunc("/session/{id}", r.flywheelHandler.GetSession).Methods(http.MethodGet)
	fw.HandleFunc("/download", r.flywheelHandler.Download).Methods(http.MethodPost)

	// Jobs
	api.HandleFunc("/jobs/process", r.jobHandler.Process).Methods(http.MethodPost)

	// Viewer
	viewer := api.PathPrefix("/viewer").Subrouter()
	viewer.HandleFunc("/sessions", r.viewerHandler.ListSessions).Methods(http.MethodGet)
	viewer.HandleFunc("/slice", r.viewerHandler.Slice).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
