package analysis

import "anemo-backend/internal/schema"

const (
	SummaryNotReport  = "The uploaded image does not appear to be a valid CBC lab report."
	SummaryUnreadable = "The uploaded lab report is too blurry or unclear to read. Please upload a clearer image."
	SummaryAnemia     = "Hemoglobin level appears below normal, suggesting possible anemia."
	SummaryNormal     = "All key CBC values appear to be within the normal range."
	SummaryFailed     = "We could not analyze the image. Please try again with a clearer photo."
)

// AnalysisRequest carries one uploaded photo as a data URI.
type AnalysisRequest struct {
	PhotoDataURI string `json:"photoDataUri" validate:"required"`
}

type ImageAnalysisResult struct {
	IsValid     bool   `json:"isValid"`
	Description string `json:"description"`
}

type CbcParameter struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
	Unit      string `json:"unit"`
	Range     string `json:"range"`
	IsNormal  bool   `json:"isNormal"`
}

// CbcReport never carries parameters when Summary is the not-a-report or
// unreadable sentence.
type CbcReport struct {
	Summary    string         `json:"summary"`
	Parameters []CbcParameter `json:"parameters"`
}

// FallbackCbcReport is returned whenever the model gives no usable answer.
func FallbackCbcReport() CbcReport {
	return CbcReport{Summary: SummaryFailed, Parameters: []CbcParameter{}}
}

// Raw model shapes. Pointers distinguish a missing field from a zero value.

type imageAnalysisOutput struct {
	IsValid     *bool  `json:"isValid" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type cbcParameterOutput struct {
	Parameter string `json:"parameter" validate:"required"`
	Value     string `json:"value" validate:"required"`
	Unit      string `json:"unit"`
	Range     string `json:"range"`
	IsNormal  *bool  `json:"isNormal" validate:"required"`
}

type cbcReportOutput struct {
	Summary    string               `json:"summary" validate:"required"`
	Parameters []cbcParameterOutput `json:"parameters" validate:"required,dive"`
}

var imageAnalysisSchema = schema.Object(map[string]schema.Definition{
	"isValid":     schema.Bool("Whether the photo can be used for anemia screening."),
	"description": schema.String("What is visible in the photo, or why it cannot be used."),
}, "isValid", "description")

var cbcReportSchema = schema.Object(map[string]schema.Definition{
	"summary": schema.String("A one-sentence summary of the overall result."),
	"parameters": schema.Array("Key CBC parameters found in the report.",
		schema.Object(map[string]schema.Definition{
			"parameter": schema.String(`The name of the blood parameter, e.g. "Hemoglobin".`),
			"value":     schema.String("The measured value from the report."),
			"unit":      schema.String(`The unit of measurement, e.g. "g/dL".`),
			"range":     schema.String("The reference range printed on the report."),
			"isNormal":  schema.Bool("Whether the value is within the printed range."),
		}, "parameter", "value", "unit", "range", "isNormal"),
	),
}, "summary", "parameters")
