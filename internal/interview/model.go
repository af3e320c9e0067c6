package interview

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"anemo-backend/internal/schema"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAwaitingFirstQuestion Status = "awaiting-first-question"
	StatusAwaitingAnswer        Status = "awaiting-answer"
	StatusComplete              Status = "complete"
)

const (
	NoDescription = "No description available"
	NoProfile     = "No profile provided"
)

// Profile is the self-reported user profile. Keys other than the four
// known ones are kept in Extra and written back flat.
type Profile struct {
	Age      *int           `json:"age,omitempty"`
	Gender   string         `json:"gender,omitempty"`
	WeightKg *float64       `json:"weightKg,omitempty"`
	HeightCm *float64       `json:"heightCm,omitempty"`
	Extra    map[string]any `json:"-"`
}

func (p Profile) IsFemale() bool {
	switch strings.ToLower(strings.TrimSpace(p.Gender)) {
	case "female", "f", "woman":
		return true
	}
	return false
}

// Summary renders the profile for prompts, e.g. "Age: 30, Gender: Female".
func (p Profile) Summary() string {
	var parts []string
	if p.Age != nil {
		parts = append(parts, fmt.Sprintf("Age: %d", *p.Age))
	}
	if g := strings.TrimSpace(p.Gender); g != "" {
		parts = append(parts, "Gender: "+g)
	}
	if p.WeightKg != nil {
		parts = append(parts, "Weight: "+formatFloat(*p.WeightKg)+" kg")
	}
	if p.HeightCm != nil {
		parts = append(parts, "Height: "+formatFloat(*p.HeightCm)+" cm")
	}

	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, p.Extra[k]))
	}

	if len(parts) == 0 {
		return NoProfile
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Age != nil {
		out["age"] = *p.Age
	}
	if p.Gender != "" {
		out["gender"] = p.Gender
	}
	if p.WeightKg != nil {
		out["weightKg"] = *p.WeightKg
	}
	if p.HeightCm != nil {
		out["heightCm"] = *p.HeightCm
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts numbers sent either as JSON numbers or as numeric
// strings, since form inputs often submit "30" rather than 30.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Profile{}
	for k, v := range raw {
		switch k {
		case "age":
			f, err := numberField(k, v)
			if err != nil {
				return err
			}
			if f != nil {
				age := int(*f)
				p.Age = &age
			}
		case "gender":
			if string(v) == "null" {
				continue
			}
			if err := json.Unmarshal(v, &p.Gender); err != nil {
				return fmt.Errorf("profile gender: %w", err)
			}
		case "weightKg":
			f, err := numberField(k, v)
			if err != nil {
				return err
			}
			p.WeightKg = f
		case "heightCm":
			f, err := numberField(k, v)
			if err != nil {
				return err
			}
			p.HeightCm = f
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[k] = val
		}
	}
	return nil
}

func numberField(name string, v json.RawMessage) (*float64, error) {
	if string(v) == "null" {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("profile %s: not a number", name)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("profile %s: not a number", name)
	}
	return &f, nil
}

type QA struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Session is the whole interview state. The server keeps none of it; the
// client sends the session back on every call.
type Session struct {
	ID                  uuid.UUID `json:"id" validate:"required"`
	UserID              string    `json:"userId" validate:"required"`
	Profile             Profile   `json:"profileData"`
	ImageAnalysisResult string    `json:"imageAnalysisResult"`
	PriorResponses      []QA      `json:"priorResponses" validate:"dive"`
	PendingQuestion     string    `json:"pendingQuestion,omitempty"`
	Status              Status    `json:"status" validate:"oneof=awaiting-first-question awaiting-answer complete"`
}

func (s Session) withResponses(extra ...QA) Session {
	responses := make([]QA, 0, len(s.PriorResponses)+len(extra))
	responses = append(responses, s.PriorResponses...)
	s.PriorResponses = append(responses, extra...)
	return s
}

type Turn struct {
	Question   string `json:"question"`
	IsComplete bool   `json:"isComplete"`
}

type StartRequest struct {
	UserID              string  `json:"userId" validate:"required"`
	Profile             Profile `json:"profileData"`
	ImageAnalysisResult string  `json:"imageAnalysisResult"`
}

type AnswerRequest struct {
	Session Session `json:"session"`
	Answer  string  `json:"answer"`
}

type ReportRequest struct {
	Session Session `json:"session"`
}

// TurnResponse is returned by every interview step so the client can
// replace its session wholesale.
type TurnResponse struct {
	Session Session `json:"session"`
	Turn    Turn    `json:"turn"`
}

const (
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

func RiskLevel(score int) string {
	switch {
	case score >= 60:
		return RiskHigh
	case score >= 40:
		return RiskModerate
	}
	return RiskLow
}

type RecommendationReport struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"sessionId"`
	UserID          string    `json:"userId"`
	RiskScore       int       `json:"riskScore"`
	RiskLevel       string    `json:"riskLevel"`
	Recommendations string    `json:"recommendations"`
	Transcript      []QA      `json:"transcript,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type turnOutput struct {
	Question   string `json:"question"`
	IsComplete *bool  `json:"isComplete" validate:"required"`
}

type recommendationOutput struct {
	RiskScore       *float64 `json:"riskScore" validate:"required,min=0,max=100"`
	Recommendations string   `json:"recommendations" validate:"required"`
}

var turnSchema = schema.Object(map[string]schema.Definition{
	"question":   schema.String("The next interview question. Empty when the interview is complete."),
	"isComplete": schema.Bool("True when enough information has been collected."),
}, "question", "isComplete")

var recommendationSchema = schema.Object(map[string]schema.Definition{
	"riskScore":       schema.Number("Anemia risk from 0 to 100."),
	"recommendations": schema.String("Personalized recommendations as plain text."),
}, "riskScore", "recommendations")
