package models

// Sector is the industry a user is building a career in.
type Sector string

const (
	SectorHealthcare      Sector = "Healthcare Tech"
	SectorAgriculture     Sector = "Agriculture Tech"
	SectorSmartCity       Sector = "Smart City"
	SectorFintech         Sector = "Fintech"
	SectorRenewableEnergy Sector = "Renewable Energy"
)

// Sectors lists every supported sector in display order.
var Sectors = []Sector{
	SectorHealthcare,
	SectorAgriculture,
	SectorSmartCity,
	SectorFintech,
	SectorRenewableEnergy,
}

// SuggestedSkills offers a starting skill palette per sector.
var SuggestedSkills = map[Sector][]string{
	SectorHealthcare:      {"Python", "SQL", "HL7/FHIR", "DICOM", "HIPAA", "EHR Systems", "Medical Imaging AI", "Data Visualization"},
	SectorAgriculture:     {"IoT Sensors", "GIS Mapping", "Remote Sensing", "Precision Farming", "Drone Data Analysis", "Data Science"},
	SectorSmartCity:       {"Urban Planning", "Smart Grids", "Edge Computing", "SCADA Systems", "Network Security", "Big Data"},
	SectorFintech:         {"Blockchain", "Java", "Cryptography", "Risk Management", "APIs", "Financial Modeling"},
	SectorRenewableEnergy: {"Energy Auditing", "Solar Design", "Power Electronics", "CAD", "Project Management", "IoT"},
}

// Valid reports whether s is one of the supported sectors.
func (s Sector) Valid() bool {
	for _, known := range Sectors {
		if s == known {
			return true
		}
	}
	return false
}
