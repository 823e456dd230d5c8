package entities

import "time"

// Case is a persisted case record ("processo").
type Case struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Number       string         `gorm:"uniqueIndex;size:64" json:"numero"`
	Type         string         `gorm:"size:256" json:"tipo"`
	FiledAt      string         `gorm:"size:32" json:"data_autuacao"`
	Requester    string         `gorm:"size:512" json:"interessado,omitempty"`
	SourceURL    string         `gorm:"size:2048" json:"url_original"`
	SubDocuments []CaseDocument `gorm:"foreignKey:CaseID" json:"protocolos,omitempty"`
	Events       []CaseEvent    `gorm:"foreignKey:CaseID" json:"andamentos,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Case) TableName() string {
	return "processos"
}

// CaseDocument is a persisted sub-document ("protocolo").
type CaseDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CaseID     uint      `gorm:"index" json:"processo_id"`
	Position   int       `json:"posicao"`
	Number     string    `gorm:"size:64" json:"numero"`
	Type       string    `gorm:"size:256" json:"tipo"`
	Date       string    `gorm:"size:32" json:"data"`
	IncludedAt string    `gorm:"size:32" json:"data_inclusao"`
	Unit       string    `gorm:"size:256" json:"unidade"`
	Link       string    `gorm:"size:2048" json:"link,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CaseDocument) TableName() string {
	return "protocolos"
}

// CaseEvent is a persisted timeline event ("andamento").
type CaseEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CaseID      uint      `gorm:"index" json:"processo_id"`
	Position    int       `json:"posicao"`
	OccurredAt  string    `gorm:"size:32" json:"data_hora"`
	Unit        string    `gorm:"size:256" json:"unidade"`
	Description string    `gorm:"type:text" json:"descricao"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CaseEvent) TableName() string {
	return "andamentos"
}
