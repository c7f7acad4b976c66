package dto

type CheckSpamRequest struct {
	From string `json:"From" validate:"required"`
}

type CheckSpamResponse struct {
	IsSpam      bool    `json:"is_spam"`
	Found       bool    `json:"found"`
	Confidence  float64 `json:"confidence"`
	ReportCount int     `json:"report_count"`
	Source      string  `json:"source,omitempty"`
	PhoneNumber string  `json:"phone_number"`
	Layer       int     `json:"layer"`
	Method      string  `json:"method"`
}

type ReportSpamResponse struct {
	Success     bool    `json:"success"`
	PhoneNumber string  `json:"phone_number"`
	IsSpam      bool    `json:"is_spam"`
	Confidence  float64 `json:"confidence"`
	ReportCount int     `json:"report_count"`
	Source      string  `json:"source"`
}
