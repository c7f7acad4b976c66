package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"call-sentinel/internal/domain/dto"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/services"
)

type ClassifierHandlers struct {
	Logger     *logger.Logger
	Classifier Iservices.IClassifierService
}

func NewClassifierHandlers(logger *logger.Logger, classifier Iservices.IClassifierService) *ClassifierHandlers {
	return &ClassifierHandlers{Logger: logger, Classifier: classifier}
}

// PredictText scores free text with the configured classifier, without modulation.
// A zero threshold means the escalation threshold.
func (th *ClassifierHandlers) PredictText(w http.ResponseWriter, r *http.Request) {
	var request dto.PredictTextRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Error to process JSON")
		return
	}
	defer r.Body.Close()

	if err := dto.Validate(request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	threshold := request.Threshold
	if threshold == 0 {
		threshold = services.EscalationThreshold
	}

	response := dto.PredictTextResponse{Threshold: threshold, ModelType: th.Classifier.Name()}
	confidence, err := th.Classifier.Score(r.Context(), request.Text, nil)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Classifier probe failed: %v", err))
		response.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, response)
		return
	}
	response.Confidence = confidence
	response.IsSpam = confidence > threshold
	writeJSON(w, http.StatusOK, response)
}
