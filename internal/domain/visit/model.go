package visit

// VitalSigns is the measurement bundle captured during a home visit. Every
// field is free text and optional; partial entry is allowed and no numeric
// validation is applied.
type VitalSigns struct {
	Temperature      string `json:"temperature,omitempty"`
	HeartRate        string `json:"heartRate,omitempty"`
	RespiratoryRate  string `json:"respiratoryRate,omitempty"`
	BloodPressure    string `json:"bloodPressure,omitempty"`
	OxygenSaturation string `json:"oxygenSaturation,omitempty"`
	Weight           string `json:"weight,omitempty"`
	BloodGlucose     string `json:"bloodGlucose,omitempty"`
}

// Visit is one completed home visit: patient identity, the SOAP note, and
// optional vital signs and professional assignment. Patients are not a
// stored entity; the name and birth date on the visit are the identity.
// Visits are append-only: once recorded they can be deleted but not edited.
type Visit struct {
	ID          string `json:"id"`
	PatientName string `json:"patientName"`
	BirthDate   Date   `json:"birthDate"`
	// Age is captured once when the visit is recorded and never recomputed,
	// so it reflects the patient's age at entry time.
	Age       int  `json:"age"`
	VisitDate Date `json:"visitDate"`

	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`

	// ProfessionalName is a snapshot taken at assignment time. Deleting the
	// professional later leaves the reference dangling on purpose.
	ProfessionalID   string `json:"professionalId,omitempty"`
	ProfessionalName string `json:"professionalName,omitempty"`

	VitalSigns *VitalSigns `json:"vitalSigns,omitempty"`
}

// PatientSummary is a derived grouping of visits by (name, birth date). It
// is computed from the ledger on demand and never persisted.
type PatientSummary struct {
	Name      string `json:"name"`
	BirthDate Date   `json:"birthDate"`
	Visits    int    `json:"visits"`
}
