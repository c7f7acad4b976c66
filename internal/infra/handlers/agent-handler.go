package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AgentHandlers is the query interface the voice agent uses while it has the caller.
type AgentHandlers struct {
	Logger    *logger.Logger
	Knowledge Iservices.IKnowledgeService
	Purposes  Iservices.ICallerPurposeService
}

func NewAgentHandlers(logger *logger.Logger, knowledge Iservices.IKnowledgeService, purposes Iservices.ICallerPurposeService) *AgentHandlers {
	return &AgentHandlers{Logger: logger, Knowledge: knowledge, Purposes: purposes}
}

func (th *AgentHandlers) GetUserInformation(w http.ResponseWriter, r *http.Request) {
	th.search(w, r, entities.CategoryCallerProfile, 5)
}

func (th *AgentHandlers) GetCallHistory(w http.ResponseWriter, r *http.Request) {
	th.search(w, r, entities.CategoryCallRecord, 10)
}

func (th *AgentHandlers) SearchAll(w http.ResponseWriter, r *http.Request) {
	th.search(w, r, "", 5)
}

func (th *AgentHandlers) PostSuspectInformation(w http.ResponseWriter, r *http.Request) {
	th.addDocuments(w, r, entities.CategorySuspectReport)
}

func (th *AgentHandlers) AddUserDocuments(w http.ResponseWriter, r *http.Request) {
	th.addDocuments(w, r, entities.CategoryCallerProfile)
}

// GetCallPurpose returns why a number was flagged, or found=false.
func (th *AgentHandlers) GetCallPurpose(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]
	record, err := th.Purposes.Find(r.Context(), phone)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			th.Logger.Warn(fmt.Sprintf("Caller purpose lookup failed: %v", err), logrus.Fields{
				"caller":     phone,
				"dependency": "caller_purpose",
			})
		}
		writeJSON(w, http.StatusOK, dto.CallPurposeResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, dto.CallPurposeResponse{Found: true, Record: &record})
}

// search answers with an empty result set, not an error, when the store has nothing
// or cannot be reached.
func (th *AgentHandlers) search(w http.ResponseWriter, r *http.Request, category entities.Category, defaultTopK int) {
	var request dto.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Error to process JSON")
		return
	}
	defer r.Body.Close()

	if err := dto.Validate(request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if request.TopK == 0 {
		request.TopK = defaultTopK
	}

	results, err := th.Knowledge.Search(r.Context(), request.Query, category, request.TopK)
	if err != nil {
		th.Logger.Warn(fmt.Sprintf("Knowledge search failed: %v", err), logrus.Fields{
			"category":   category,
			"dependency": "knowledge",
		})
		results = []entities.ScoredDocument{}
	}

	label := string(category)
	if label == "" {
		label = "all"
	}
	writeJSON(w, http.StatusOK, dto.QueryResponse{
		Success:  true,
		Results:  results,
		Query:    request.Query,
		Count:    len(results),
		Category: label,
	})
}

func (th *AgentHandlers) addDocuments(w http.ResponseWriter, r *http.Request, category entities.Category) {
	var request dto.DocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Error to process JSON")
		return
	}
	defer r.Body.Close()

	if err := dto.Validate(request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ids := make([]string, 0, len(request.Documents))
	for i, document := range request.Documents {
		id, err := th.Knowledge.Add(r.Context(), documentTitle(category, i, request.Metadata), document, category, request.Metadata)
		if err != nil {
			th.Logger.Error(fmt.Sprintf("Failed to add %s document: %v", category, err))
			writeError(w, http.StatusInternalServerError, "Failed to store documents")
			return
		}
		ids = append(ids, id)
	}

	writeJSON(w, http.StatusOK, dto.DocumentsResponse{
		Success:  true,
		Message:  fmt.Sprintf("Added %d %s documents", len(ids), category),
		IDs:      ids,
		Count:    len(ids),
		Category: string(category),
	})
}

// documentTitle names a document after its category and whoever it is about.
func documentTitle(category entities.Category, index int, metadata map[string]any) string {
	title := fmt.Sprintf("%s %d", category, index+1)
	for _, key := range []string{"phone_number", "user_id"} {
		if value, ok := metadata[key].(string); ok && value != "" {
			return fmt.Sprintf("%s - %s", title, value)
		}
	}
	return title
}
