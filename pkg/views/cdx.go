package views

// CDX is one located content-index record. The head insert is finalized
// against a CDX record because the record is only known after content
// lookup, later in the replay pipeline than the surrounding parameters.
type CDX struct {
	URLKey    string `json:"urlkey,omitempty"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Mime      string `json:"mime,omitempty"`
	Status    string `json:"status,omitempty"`
	Digest    string `json:"digest,omitempty"`
	IsLive    bool   `json:"is_live,omitempty"`
}
