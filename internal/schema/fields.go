package schema

// FieldCount is the number of inputs the model requires
const FieldCount = 15

var pageTitles = map[int]string{
	1: "Contexte route",
	2: "Infrastructure",
	3: "Collision",
	4: "Conducteur",
	5: "Conditions",
	6: "Récapitulatif et prédiction",
}

var defaultFields = []FieldDefinition{
	{Name: "dep", Label: "Département", Page: 1, Domain: FreeString{}},
	{Name: "lum", Label: "Conditions d'éclairage", Page: 5, Domain: IntEnum{Values: []int{-1, 1, 2, 3, 4, 5}}},
	{Name: "atm", Label: "Conditions atmosphériques", Page: 5, Domain: IntEnum{Values: append([]int{-1}, intRange(1, 9)...)}},
	{Name: "catr", Label: "Catégorie de route", Page: 1, Domain: IntEnum{Values: []int{1, 2, 3, 4, 5, 6, 7, 9}}},
	{Name: "agg", Label: "Agglomération", Page: 1, Domain: IntEnum{Values: []int{1, 2}}},
	{Name: "int", Label: "Type d'intersection", Page: 2, Domain: IntEnum{Values: intRange(1, 9)}},
	{Name: "circ", Label: "Régime de circulation", Page: 2, Domain: IntEnum{Values: []int{-1, 1, 2, 3, 4}}},
	{Name: "col", Label: "Type de collision", Page: 3, Domain: IntEnum{Values: append([]int{-1}, intRange(1, 7)...)}},
	{Name: "vma_bucket", Label: "Vitesse maximale autorisée", Page: 1, Domain: StringEnum{Values: []string{
		"<=30", "31-50", "51-80", "81-90", "91-110", "111-130", ">130", "inconnue",
	}}},
	{Name: "catv_family_4", Label: "Famille de véhicule", Page: 4, Domain: StringEnum{Values: []string{
		"voitures_utilitaires", "2rm_3rm", "lourds_tc_agri_autres", "vulnerables",
	}}},
	{Name: "manv_mode", Label: "Manœuvre", Page: 3, Domain: NumericRange{Min: -1, Max: 26}},
	{Name: "driver_age_bucket", Label: "Classe d'âge conducteur", Page: 4, Domain: StringEnum{Values: []string{
		"<18", "18-24", "25-34", "35-44", "45-54", "55-64", "65-74", "75+", "unknown",
	}}},
	{Name: "choc_mode", Label: "Point de choc initial", Page: 3, Domain: NumericRange{Min: -1, Max: 9}},
	{Name: "driver_trajet_family", Label: "Famille de trajet conducteur", Page: 4, Domain: StringEnum{Values: []string{
		"trajet_1", "trajet_2", "trajet_3", "trajet_4", "trajet_5", "trajet_9", "unknown",
	}}},
	{Name: "minute", Label: "Minute de l'heure", Page: 5, Domain: NumericRange{Min: -1, Max: 59}},
}

// Default returns the canonical 15-field schema
func Default() *Schema {
	s, err := New(defaultFields, pageTitles)
	if err != nil {
		panic("schema: invalid default fields: " + err.Error())
	}
	return s
}
