package types

// EnhanceRequest represents the body of POST /api/resume/enhance and /api/resume/agent.
type EnhanceRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription,omitempty"`
	// JobURL is fetched for its posting text when JobDescription is empty.
	JobURL string `json:"jobUrl,omitempty" validate:"omitempty,url,max=2048"`
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
