package dto

type PredictTextRequest struct {
	Text      string  `json:"text" validate:"required"`
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
}

type PredictTextResponse struct {
	IsSpam     bool    `json:"is_spam"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
	ModelType  string  `json:"model_type"`
	Error      string  `json:"error,omitempty"`
}
