package api

import "fmt"

// Suggestion is one candidate species returned by the identification service
type Suggestion struct {
	PlantName   string  `json:"plant_name"`
	Probability float64 `json:"probability"`
}

// Description holds the markdown sections describing the top suggestion.
// Any of them may be absent.
type Description struct {
	MedicinalUses string `json:"medicinal_uses,omitempty"`
	HowToGrow     string `json:"how_to_grow,omitempty"`
	Warnings      string `json:"warnings,omitempty"`
	HomeRemedies  string `json:"home_remedies,omitempty"`
}

// IdentificationResult is the decoded success payload of /identify
type IdentificationResult struct {
	Suggestions []Suggestion `json:"suggestions"`
	Description Description  `json:"description"`
}

// Top returns the highest ranked suggestion, if any
func (r *IdentificationResult) Top() (Suggestion, bool) {
	if r == nil || len(r.Suggestions) == 0 {
		return Suggestion{}, false
	}
	return r.Suggestions[0], true
}

// identifyResponse is the wire shape; error and data share one object
type identifyResponse struct {
	Error string `json:"error,omitempty"`
	IdentificationResult
}

// ChatRequest is the body of a follow-up question
type ChatRequest struct {
	Question  string `json:"question"`
	PlantName string `json:"plant_name"`
}

// ChatResponse is the reply to a follow-up question
type ChatResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TransportError reports a failed round-trip: either no response at all
// (Err is set) or a non-2xx status.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("Network error: %v", e.Err)
	}
	return "Server error: " + e.Status
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is an error message the service returned in a 2xx body
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}
