package models

// SubjectStatus is the outcome of classifying one subject row.
type SubjectStatus string

const (
	SubjectStatusEquivalent SubjectStatus = "EQUIVALENT"
	SubjectStatusPending    SubjectStatus = "PENDING"
)

// SubjectRecord is one parsed row of the analyzer's table.
type SubjectRecord struct {
	Name         string        `json:"name"`
	Workload     int           `json:"workload"`
	EquivalentTo *string       `json:"equivalentTo"`
	Status       SubjectStatus `json:"status"`
	NeedsReview  bool          `json:"needsReview"`
}

// AnalysisSummary aggregates every subject parsed from one analyzer response.
type AnalysisSummary struct {
	EquivalentCount    int             `json:"equivalentCount"`
	PendingCount       int             `json:"pendingCount"`
	TotalWorkloadHours int             `json:"workloadCount"`
	ReviewCount        int             `json:"reviewCount"`
	EquivalentSubjects []SubjectRecord `json:"equivalentSubjects"`
	PendingSubjects    []SubjectRecord `json:"pendingSubjects"`
	Notes              string          `json:"notes"`
	RawContent         string          `json:"rawContent"`
}

// UploadedFile is one PDF received in an analysis request.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// AnalysisRequest groups the uploads and form fields of one analysis.
type AnalysisRequest struct {
	StudentTranscript *UploadedFile
	BaseCurriculum    *UploadedFile
	Certificates      *UploadedFile
	StudentName       string
	Registration      string
	CurrentCourse     string
	TargetCourse      string
}

// AnalysisResult is returned after a successful analysis.
type AnalysisResult struct {
	AnalysisResult string `json:"analysis_result"`
	ReportID       string `json:"report_id"`
	Message        string `json:"message"`
}
