package routes

import (
	"github.com/gorilla/mux"

	"github.com/minhdangfptu/myFEvent-sub007/handlers"
	"github.com/minhdangfptu/myFEvent-sub007/middleware"
	"github.com/minhdangfptu/myFEvent-sub007/notifier"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsPatchOnly  = []string{"PATCH", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

// Handlers bundles everything the route table wires up.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Events        *handlers.EventHandler
	Departments   *handlers.DepartmentHandler
	Members       *handlers.MemberHandler
	Risks         *handlers.RiskHandler
	Notifications *handlers.NotificationHandler
	Hub           *notifier.Hub
}

func RegisterRoutes(r *mux.Router, h *Handlers) {
	// Public
	r.HandleFunc("/health", handlers.HealthCheck).Methods(MethodsGetOnly...)
	r.HandleFunc("/api/auth/register", h.Auth.Register).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/login", h.Auth.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/ws", h.Hub.ServeWS).Methods("GET")

	// Protected
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	api.HandleFunc("/auth/me", h.Auth.Me).Methods(MethodsGetOnly...)

	// Events
	api.HandleFunc("/events", h.Events.Create).Methods(MethodsPostOnly...)
	api.HandleFunc("/events", h.Events.List).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}", h.Events.Get).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}", h.Events.Update).Methods(MethodsPutOnly...)
	api.HandleFunc("/events/{eventId}", h.Events.Delete).Methods(MethodsDeleteOnly...)

	// Members
	api.HandleFunc("/events/{eventId}/members", h.Members.Join).Methods(MethodsPostOnly...)
	api.HandleFunc("/events/{eventId}/members", h.Members.List).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/members/{memberId}/role", h.Members.UpdateRole).Methods(MethodsPatchOnly...)

	// Departments
	api.HandleFunc("/events/{eventId}/departments", h.Departments.Create).Methods(MethodsPostOnly...)
	api.HandleFunc("/events/{eventId}/departments", h.Departments.List).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/departments/{departmentId}", h.Departments.Get).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/departments/{departmentId}", h.Departments.Update).Methods(MethodsPutOnly...)
	api.HandleFunc("/events/{eventId}/departments/{departmentId}", h.Departments.Delete).Methods(MethodsDeleteOnly...)

	// Risks. Fixed segments are registered before the {riskId} routes
	// so "all", "statistics" and "categories" never match as ids.
	api.HandleFunc("/events/{eventId}/risks/all", h.Risks.GetAll).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/risks/statistics", h.Risks.CategoryStatistics).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/risks/categories", h.Risks.Categories).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/risks", h.Risks.Create).Methods(MethodsPostOnly...)
	api.HandleFunc("/events/{eventId}/risks", h.Risks.List).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/departments/{departmentId}/risks", h.Risks.ListByDepartment).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/risks/{riskId}", h.Risks.Get).Methods(MethodsGetOnly...)
	api.HandleFunc("/events/{eventId}/risks/{riskId}", h.Risks.Update).Methods(MethodsPutOnly...)
	api.HandleFunc("/events/{eventId}/risks/{riskId}", h.Risks.Delete).Methods(MethodsDeleteOnly...)
	api.HandleFunc("/events/{eventId}/risks/{riskId}/status", h.Risks.RecomputeStatus).Methods(MethodsPostOnly...)

	// Occurred risks
	api.HandleFunc("/events/{eventId}/risks/{riskId}/occurred", h.Risks.AddOccurrence).Methods(MethodsPostOnly...)
	api.HandleFunc("/events/{eventId}/risks/{riskId}/occurred/{occurredRiskId}", h.Risks.UpdateOccurrence).Methods(MethodsPatchOnly...)
	api.HandleFunc("/events/{eventId}/risks/{riskId}/occurred/{occurredRiskId}", h.Risks.RemoveOccurrence).Methods(MethodsDeleteOnly...)

	// Notifications
	api.HandleFunc("/events/{eventId}/notifications", h.Notifications.List).Methods(MethodsGetOnly...)
}
