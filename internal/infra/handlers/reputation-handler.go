package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	Iservices "call-sentinel/internal/domain/interfaces/services"
	"call-sentinel/internal/infra/logger"
	"call-sentinel/internal/infra/services"
)

type ReputationHandlers struct {
	Logger     *logger.Logger
	Reputation Iservices.IReputationService
}

func NewReputationHandlers(logger *logger.Logger, reputation Iservices.IReputationService) *ReputationHandlers {
	return &ReputationHandlers{Logger: logger, Reputation: reputation}
}

// Check reports what the reputation store knows about a number. Unknown numbers
// are answered with found=false.
func (th *ReputationHandlers) Check(w http.ResponseWriter, r *http.Request) {
	var request dto.CheckSpamRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Error to process JSON")
		return
	}
	defer r.Body.Close()

	if err := dto.Validate(request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	response := dto.CheckSpamResponse{
		PhoneNumber: request.From,
		Layer:       1,
		Method:      "reputation",
	}
	// Lookup fails open: storage errors also come back as not found.
	record, err := th.Reputation.Lookup(r.Context(), request.From)
	if err == nil && record != nil {
		response.Found = true
		response.IsSpam = record.IsSpam
		response.Confidence = record.Confidence
		response.ReportCount = record.ReportCount
		response.Source = record.Source
	}
	writeJSON(w, http.StatusOK, response)
}

// Report records one observation about a number. Confidence only moves up unless
// the source is manual_override.
func (th *ReputationHandlers) Report(w http.ResponseWriter, r *http.Request) {
	var report entities.ReputationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "Error to process JSON")
		return
	}
	defer r.Body.Close()

	if err := dto.Validate(report); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	record, err := th.Reputation.Record(r.Context(), report)
	if err != nil {
		if errors.Is(err, services.ErrInvalidNumber) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		th.Logger.Error(fmt.Sprintf("Failed to record spam report: %v", err))
		writeError(w, http.StatusInternalServerError, "Failed to record report")
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportSpamResponse{
		Success:     true,
		PhoneNumber: record.PhoneNumber,
		IsSpam:      record.IsSpam,
		Confidence:  record.Confidence,
		ReportCount: record.ReportCount,
		Source:      record.Source,
	})
}
