package prompt

// CbcReportData fills cbc_report.tmpl.
type CbcReportData struct {
	NotReport  string
	Unreadable string
	Anemia     string
	Normal     string
	Parameters []string
}

// InterviewData fills interview_turn.tmpl.
type InterviewData struct {
	Female         bool
	TargetTurns    string
	Profile        string
	ImageAnalysis  string
	PriorResponses []QA
	LastResponse   string
}

type QA struct {
	Question string
	Answer   string
}

// RecommendationData fills recommendations.tmpl.
type RecommendationData struct {
	ImageAnalysis      string
	UserProfile        string
	InterviewResponses string
}

// ChatData fills chat_answer.tmpl.
type ChatData struct {
	Assistant string
	Language  string
	Question  string
}

// ClinicData fills clinic_lookup.tmpl.
type ClinicData struct {
	Tool  string
	Query string
}
