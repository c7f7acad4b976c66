package routes

import (
	"encoding/json"
	"net/http"

	"call-sentinel/internal/infra/handlers"
	"call-sentinel/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Routes struct {
	Mux                *mux.Router
	APIKey             string
	CallHandlers       *handlers.CallHandlers
	AgentHandlers      *handlers.AgentHandlers
	ReputationHandlers *handlers.ReputationHandlers
	ClassifierHandlers *handlers.ClassifierHandlers
}

func NewRoutes(
	mux *mux.Router,
	apiKey string,
	callHandlers *handlers.CallHandlers,
	agentHandlers *handlers.AgentHandlers,
	reputationHandlers *handlers.ReputationHandlers,
	classifierHandlers *handlers.ClassifierHandlers,
) *Routes {
	return &Routes{mux, apiKey, callHandlers, agentHandlers, reputationHandlers, classifierHandlers}
}

func (r *Routes) Init() {
	voice := r.Mux.PathPrefix("/voice").Subrouter()
	voice.HandleFunc("/incoming", r.CallHandlers.Incoming).Methods(http.MethodPost)
	voice.HandleFunc("/speech", r.CallHandlers.Speech).Methods(http.MethodPost)
	voice.HandleFunc("/status", r.CallHandlers.Status).Methods(http.MethodPost)
	voice.HandleFunc("/handoff", r.CallHandlers.Handoff).Methods(http.MethodPost)

	api := r.Mux.PathPrefix("/api").Subrouter()
	api.Use(middleware.BearerAuth(r.APIKey))

	agent := api.PathPrefix("/agent").Subrouter()
	agent.HandleFunc("/get_user_information", r.AgentHandlers.GetUserInformation).Methods(http.MethodPost)
	agent.HandleFunc("/get_call_history", r.AgentHandlers.GetCallHistory).Methods(http.MethodPost)
	agent.HandleFunc("/post_suspect_information", r.AgentHandlers.PostSuspectInformation).Methods(http.MethodPost)
	agent.HandleFunc("/add_user_documents", r.AgentHandlers.AddUserDocuments).Methods(http.MethodPost)
	agent.HandleFunc("/search_all", r.AgentHandlers.SearchAll).Methods(http.MethodPost)
	agent.HandleFunc("/get_call_purpose/{phone}", r.AgentHandlers.GetCallPurpose).Methods(http.MethodGet)

	api.HandleFunc("/reputation/check", r.ReputationHandlers.Check).Methods(http.MethodPost)
	api.HandleFunc("/reputation/report", r.ReputationHandlers.Report).Methods(http.MethodPost)
	api.HandleFunc("/classifier/predict_text", r.ClassifierHandlers.PredictText).Methods(http.MethodPost)

	r.Mux.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
