package clinic

import "anemo-backend/internal/schema"

type ProviderType string

const (
	TypeHospital ProviderType = "Hospital"
	TypeDoctor   ProviderType = "Doctor"
	TypeClinic   ProviderType = "Clinic"
)

type ClinicRecord struct {
	Name    string       `json:"name" yaml:"name" validate:"required"`
	Address string       `json:"address" yaml:"address" validate:"required"`
	Type    ProviderType `json:"type" yaml:"type" validate:"oneof=Hospital Doctor Clinic"`
	Contact string       `json:"contact,omitempty" yaml:"contact,omitempty"`
	Hours   string       `json:"hours,omitempty" yaml:"hours,omitempty"`
	Website string       `json:"website,omitempty" yaml:"website,omitempty"`
	Notes   string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// SearchRequest is both the flow input and the tool input.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResult is both the flow output and the tool output.
type SearchResult struct {
	Results []ClinicRecord `json:"results" validate:"required,dive"`
}

const ToolName = "searchForHealthcareProviders"

var clinicSchema = schema.Object(map[string]schema.Definition{
	"name":    schema.String("The name of the hospital, clinic, or doctor."),
	"address": schema.String("The address of the location."),
	"type":    schema.Enum("The type of healthcare provider.", string(TypeHospital), string(TypeDoctor), string(TypeClinic)),
	"contact": schema.String("Contact number of the provider."),
	"hours":   schema.String("Operating hours."),
	"website": schema.String("The official website."),
	"notes":   schema.String("Additional notes or specialties."),
}, "name", "address", "type")

var searchRequestSchema = schema.Object(map[string]schema.Definition{
	"query": schema.String(`The user's search query for a location or address, e.g. "hospitals in Iloilo City" or "clinics near Molo".`),
}, "query")

var searchResultSchema = schema.Object(map[string]schema.Definition{
	"results": schema.Array("Relevant clinics, hospitals, or doctors.", clinicSchema),
}, "results")
