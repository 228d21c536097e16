package types

// Project is a funded research project results are attached to.
type Project struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	Type        string `json:"type" yaml:"type"`
	Field       string `json:"field" yaml:"field"`
}

// ResultType describes a category of Result and its dynamic fields.
type ResultType struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Code        string      `json:"code" yaml:"code"`
	Description string      `json:"description" yaml:"description"`
	Enabled     bool        `json:"enabled" yaml:"enabled"`
	Fields      []TypeField `json:"fields" yaml:"fields"`
}

// TypeField is one dynamic field of a ResultType.
type TypeField struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Type     string   `json:"type" yaml:"type"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
	Required bool     `json:"required" yaml:"required"`
	Order    int      `json:"order" yaml:"order"`
}

// AchievementType is the Strapi-dialect view of a ResultType, addressed by
// DocumentID. IsDelete is 1 once logically deleted.
type AchievementType struct {
	ID          int    `json:"id" yaml:"id"`
	DocumentID  string `json:"documentId" yaml:"documentId"`
	TypeName    string `json:"type_name" yaml:"type_name"`
	TypeCode    string `json:"type_code" yaml:"type_code"`
	Description string `json:"description" yaml:"description"`
	IsDelete    int    `json:"is_delete" yaml:"is_delete"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string `json:"updatedAt" yaml:"updatedAt"`
	PublishedAt string `json:"publishedAt" yaml:"publishedAt"`
}

// FieldDef is the Strapi-dialect dynamic field definition.
// AchievementTypeID references AchievementType.DocumentID weakly.
type FieldDef struct {
	ID                int    `json:"id" yaml:"id"`
	DocumentID        string `json:"documentId" yaml:"documentId"`
	AchievementTypeID string `json:"achievement_type_id" yaml:"achievement_type_id"`
	FieldCode         string `json:"field_code" yaml:"field_code"`
	FieldName         string `json:"field_name" yaml:"field_name"`
	FieldType         string `json:"field_type" yaml:"field_type"`
	IsRequired        int    `json:"is_required" yaml:"is_required"`
	Description       string `json:"description" yaml:"description"`
	IsDelete          int    `json:"is_delete" yaml:"is_delete"`
	CreatedAt         string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         string `json:"updatedAt" yaml:"updatedAt"`
	PublishedAt       string `json:"publishedAt" yaml:"publishedAt"`
}

// Demand is an industry need captured by the crawler and matched to results.
type Demand struct {
	ID             string        `json:"id" yaml:"id"`
	Title          string        `json:"title" yaml:"title"`
	Summary        string        `json:"summary" yaml:"summary"`
	LLMSummary     string        `json:"llmSummary,omitempty" yaml:"llmSummary,omitempty"`
	Keywords       []string      `json:"keywords" yaml:"keywords"`
	Tags           []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Industry       string        `json:"industry" yaml:"industry"`
	Region         string        `json:"region" yaml:"region"`
	SourceCategory string        `json:"sourceCategory" yaml:"sourceCategory"`
	SourceSite     string        `json:"sourceSite,omitempty" yaml:"sourceSite,omitempty"`
	SourceURL      string        `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
	CapturedAt     string        `json:"capturedAt" yaml:"capturedAt"`
	Confidence     float64       `json:"confidence" yaml:"confidence"`
	Status         string        `json:"status" yaml:"status"`
	BestMatchScore float64       `json:"bestMatchScore" yaml:"bestMatchScore"`
	Matches        []DemandMatch `json:"matches" yaml:"matches"`
}

// DemandMatch links a Demand to a candidate Result. ResultID is weak.
type DemandMatch struct {
	ResultID      string  `json:"resultId" yaml:"resultId"`
	ResultTitle   string  `json:"resultTitle" yaml:"resultTitle"`
	ResultType    string  `json:"resultType" yaml:"resultType"`
	Owner         string  `json:"owner" yaml:"owner"`
	MatchScore    float64 `json:"matchScore" yaml:"matchScore"`
	Reason        string  `json:"reason" yaml:"reason"`
	SourceSnippet string  `json:"sourceSnippet,omitempty" yaml:"sourceSnippet,omitempty"`
	UpdatedAt     string  `json:"updatedAt" yaml:"updatedAt"`
}

// CrawlerSource is an external site the demand crawler polls.
type CrawlerSource struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Type           string            `json:"type" yaml:"type"`
	Industry       string            `json:"industry" yaml:"industry"`
	Region         string            `json:"region" yaml:"region"`
	BaseURL        string            `json:"baseUrl" yaml:"baseUrl"`
	Description    string            `json:"description" yaml:"description"`
	AuthType       string            `json:"authType" yaml:"authType"`
	Credentials    map[string]string `json:"credentials" yaml:"credentials"`
	FrequencyHours int               `json:"frequencyHours" yaml:"frequencyHours"`
	Priority       string            `json:"priority" yaml:"priority"`
	Tags           []string          `json:"tags" yaml:"tags"`
	Enabled        bool              `json:"enabled" yaml:"enabled"`
	LastRunAt      string            `json:"lastRunAt,omitempty" yaml:"lastRunAt,omitempty"`
	LastSuccessAt  string            `json:"lastSuccessAt,omitempty" yaml:"lastSuccessAt,omitempty"`
	Status         string            `json:"status" yaml:"status"`
	FailureReason  string            `json:"failureReason,omitempty" yaml:"failureReason,omitempty"`
}

// CrawlerSettings are the global crawler scheduling knobs.
type CrawlerSettings struct {
	DefaultFrequencyHours int      `json:"defaultFrequencyHours" yaml:"defaultFrequencyHours"`
	RetryLimit            int      `json:"retryLimit" yaml:"retryLimit"`
	AutoTagging           bool     `json:"autoTagging" yaml:"autoTagging"`
	DeduplicateThreshold  float64  `json:"deduplicateThreshold" yaml:"deduplicateThreshold"`
	NotifyEmails          []string `json:"notifyEmails" yaml:"notifyEmails"`
	NotifyWebhook         string   `json:"notifyWebhook" yaml:"notifyWebhook"`
}

// InterimResult is a project deliverable synced from the process system.
type InterimResult struct {
	ID            string       `json:"id" yaml:"id"`
	ProjectID     string       `json:"projectId" yaml:"projectId"`
	ProjectName   string       `json:"projectName" yaml:"projectName"`
	ProjectCode   string       `json:"projectCode" yaml:"projectCode"`
	ProjectPhase  string       `json:"projectPhase" yaml:"projectPhase"`
	Name          string       `json:"name" yaml:"name"`
	Type          string       `json:"type" yaml:"type"`
	TypeLabel     string       `json:"typeLabel" yaml:"typeLabel"`
	Description   string       `json:"description" yaml:"description"`
	Attachments   []Attachment `json:"attachments" yaml:"attachments"`
	Submitter     string       `json:"submitter" yaml:"submitter"`
	SubmitterDept string       `json:"submitterDept" yaml:"submitterDept"`
	SubmittedAt   string       `json:"submittedAt" yaml:"submittedAt"`
	SyncedAt      string       `json:"syncedAt" yaml:"syncedAt"`
	Source        string       `json:"source" yaml:"source"`
	SourceRef     string       `json:"sourceRef" yaml:"sourceRef"`
	SourceURL     string       `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
	Tags          []string     `json:"tags" yaml:"tags"`
	Status        string       `json:"status" yaml:"status"`
}
