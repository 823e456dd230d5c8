package entities

// CaseSummary is the preview of the parent case record ("autuação").
type CaseSummary struct {
	Number    string `json:"numero"`
	Type      string `json:"tipo"`
	FiledAt   string `json:"data_autuacao"`
	Requester string `json:"interessado,omitempty"`
}

// SubDocument is one document attached to the case ("protocolo").
// Slice order is the order reported by the source portal.
type SubDocument struct {
	Number     string `json:"numero"`
	Type       string `json:"tipo"`
	Date       string `json:"data"`
	IncludedAt string `json:"data_inclusao"`
	Unit       string `json:"unidade"`
	Link       string `json:"link,omitempty"`
}

// TimelineEvent is a status change of the case ("andamento").
// Events are chronological; the last one is the current location of the case.
type TimelineEvent struct {
	OccurredAt  string `json:"data_hora"`
	Unit        string `json:"unidade"`
	Description string `json:"descricao"`
}

// Bundle is the structured preview returned by the scrape-preview operation.
type Bundle struct {
	Summary        CaseSummary     `json:"autuacao"`
	SubDocuments   []SubDocument   `json:"protocolos"`
	Events         []TimelineEvent `json:"andamentos"`
	SourceURL      string          `json:"url_original"`
	TotalDocuments int             `json:"total_protocolos"`
	TotalEvents    int             `json:"total_andamentos"`
}

// Clone returns a deep copy so staged collections never alias caller slices.
func (b Bundle) Clone() Bundle {
	out := b
	out.SubDocuments = append([]SubDocument(nil), b.SubDocuments...)
	out.Events = append([]TimelineEvent(nil), b.Events...)
	return out
}

// PreviewRequest is the body of the scrape-preview operation.
type PreviewRequest struct {
	URL string `json:"url" binding:"required"`
}

// SaveRequest is the body of the salvar-completo operation: the whole staged bundle.
type SaveRequest struct {
	URL          string          `json:"url" binding:"required"`
	Summary      CaseSummary     `json:"autuacao"`
	SubDocuments []SubDocument   `json:"protocolos"`
	Events       []TimelineEvent `json:"andamentos"`
}

// NewSaveRequest builds the commit payload for a staged bundle.
func NewSaveRequest(url string, b Bundle) SaveRequest {
	return SaveRequest{
		URL:          url,
		Summary:      b.Summary,
		SubDocuments: b.SubDocuments,
		Events:       b.Events,
	}
}

// CommitResult is the outcome of a save. Created only from a successful response.
type CommitResult struct {
	CaseID         int64  `json:"processo_id"`
	DocumentsSaved int    `json:"protocolos_salvos"`
	EventsSaved    int    `json:"andamentos_salvos"`
	Success        bool   `json:"sucesso"`
	Message        string `json:"mensagem"`
}
