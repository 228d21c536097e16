package types

// Result statuses in the client vocabulary.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusReviewing = "reviewing"
	StatusRevision  = "revision"
	StatusRejected  = "rejected"
	StatusPublished = "published"
)

// Result sources.
const (
	SourceManualUpload  = "manual_upload"
	SourceProcessSystem = "process_system"
)

// Permission levels and access-request states carried on a Result.
const (
	PermissionSummary = "summary"
	PermissionFull    = "full"

	AccessNone     = "none"
	AccessPending  = "pending"
	AccessApproved = "approved"
	AccessRejected = "rejected"
)

// Result is a research output (paper, patent, software copyright, ...).
// ProjectID is a weak reference: the project may not exist, in which case
// the embedded project fields are empty.
type Result struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Type     string   `json:"type" yaml:"type"`
	TypeID   string   `json:"typeId" yaml:"typeId"`
	Authors  []string `json:"authors" yaml:"authors"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Content  string   `json:"content,omitempty" yaml:"content,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	ProjectID    string `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	ProjectName  string `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	ProjectCode  string `json:"projectCode,omitempty" yaml:"projectCode,omitempty"`
	ProjectPhase string `json:"projectPhase,omitempty" yaml:"projectPhase,omitempty"`

	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	SourceStage string `json:"sourceStage,omitempty" yaml:"sourceStage,omitempty"`
	SourceRef   string `json:"sourceRef,omitempty" yaml:"sourceRef,omitempty"`
	SyncTime    string `json:"syncTime,omitempty" yaml:"syncTime,omitempty"`

	FormatChecked bool   `json:"formatChecked" yaml:"formatChecked"`
	FormatStatus  string `json:"formatStatus,omitempty" yaml:"formatStatus,omitempty"`
	FormatNote    string `json:"formatNote" yaml:"formatNote"`

	Status            string   `json:"status" yaml:"status"`
	AssignedReviewers []string `json:"assignedReviewers" yaml:"assignedReviewers"`

	Visibility          string `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	PermissionStatus    string `json:"permissionStatus,omitempty" yaml:"permissionStatus,omitempty"`
	AccessRequestStatus string `json:"accessRequestStatus,omitempty" yaml:"accessRequestStatus,omitempty"`
	CanRequestAccess    bool   `json:"canRequestAccess" yaml:"canRequestAccess"`
	LastRequestAt       string `json:"lastRequestAt,omitempty" yaml:"lastRequestAt,omitempty"`
	RejectedReason      string `json:"rejectedReason" yaml:"rejectedReason"`

	Attachments []Attachment   `json:"attachments" yaml:"attachments"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	CreatedBy string `json:"createdBy" yaml:"createdBy"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt string `json:"updatedAt" yaml:"updatedAt"`

	// ReviewHistory is append-only.
	ReviewHistory []ReviewEntry `json:"reviewHistory" yaml:"reviewHistory"`
}

// ReviewEntry is one action taken on a Result by a reviewer or submitter.
type ReviewEntry struct {
	ID           string `json:"id" yaml:"id"`
	ReviewerID   string `json:"reviewerId" yaml:"reviewerId"`
	ReviewerName string `json:"reviewerName" yaml:"reviewerName"`
	Action       string `json:"action" yaml:"action"`
	Comment      string `json:"comment" yaml:"comment"`
	CreatedAt    string `json:"createdAt" yaml:"createdAt"`
}

// Attachment is a file linked to a Result or InterimResult.
type Attachment struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Size       int64  `json:"size" yaml:"size"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Ext        string `json:"ext,omitempty" yaml:"ext,omitempty"`
	URL        string `json:"url" yaml:"url"`
	UploadedAt string `json:"uploadedAt,omitempty" yaml:"uploadedAt,omitempty"`
}

// Media is the canonical shape attachments are normalized to, whichever
// nesting the backend used.
type Media struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Ext  string `json:"ext" yaml:"ext"`
	URL  string `json:"url" yaml:"url"`
	Size int64  `json:"size" yaml:"size"`
	Mime string `json:"mime" yaml:"mime"`
}

// AccessRequest asks for full-content access to a restricted Result.
// ResultID is a weak reference.
type AccessRequest struct {
	ID          string `json:"id" yaml:"id"`
	ResultID    string `json:"resultId" yaml:"resultId"`
	ResultTitle string `json:"resultTitle" yaml:"resultTitle"`
	ResultType  string `json:"resultType" yaml:"resultType"`
	ProjectName string `json:"projectName" yaml:"projectName"`
	Visibility  string `json:"visibility" yaml:"visibility"`
	UserID      string `json:"userId" yaml:"userId"`
	UserName    string `json:"userName" yaml:"userName"`
	Status      string `json:"status" yaml:"status"`
	Reason      string `json:"reason" yaml:"reason"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
	ReviewedAt  string `json:"reviewedAt,omitempty" yaml:"reviewedAt,omitempty"`
	Reviewer    string `json:"reviewer,omitempty" yaml:"reviewer,omitempty"`
	Comment     string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Page is the canonical paginated list every list response is reshaped to.
type Page[T any] struct {
	List     []T `json:"list" yaml:"list"`
	Total    int `json:"total" yaml:"total"`
	Page     int `json:"page" yaml:"page"`
	PageSize int `json:"pageSize" yaml:"pageSize"`
}
