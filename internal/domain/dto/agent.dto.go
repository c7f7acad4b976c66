package dto

import "call-sentinel/internal/domain/entities"

type QueryRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=50"`
}

type QueryResponse struct {
	Success  bool                      `json:"success"`
	Results  []entities.ScoredDocument `json:"results"`
	Query    string                    `json:"query"`
	Count    int                       `json:"count"`
	Category string                    `json:"category"`
}

type DocumentsRequest struct {
	Documents []string       `json:"documents" validate:"required,min=1,dive,required"`
	Metadata  map[string]any `json:"metadata"`
}

type DocumentsResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	IDs      []string `json:"document_ids"`
	Count    int      `json:"count"`
	Category string   `json:"category"`
}

type CallPurposeResponse struct {
	Found  bool                          `json:"found"`
	Record *entities.CallerPurposeRecord `json:"record,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
