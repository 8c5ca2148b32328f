package nomenclature

// builtinFamilies is the default catalog. Order matters: detection and
// compatible-family expansion follow it.
var builtinFamilies = []Family{
	{
		Code:   "F10-00",
		Label:  "Matériaux de construction",
		Domain: DomainGoods,
		CPV:    []string{"44100000"},
	},
	{
		Code:     "F10-01",
		Label:    "Granulats et sables",
		Domain:   DomainGoods,
		Parent:   "F10-00",
		CPV:      []string{"14210000"},
		Keywords: []string{"granulat", "sable", "gravier", "ballast"},
	},
	{
		Code:     "F10-02",
		Label:    "Ciments, bétons et mortiers",
		Domain:   DomainGoods,
		Parent:   "F10-00",
		CPV:      []string{"44111200", "44114000"},
		Keywords: []string{"ciment", "béton", "beton", "mortier"},
	},
	{
		Code:     "F20-01",
		Label:    "Aciers et armatures",
		Domain:   DomainGoods,
		CPV:      []string{"44316500"},
		Keywords: []string{"acier", "armature", "treillis"},
	},
	{
		Code:     "F30-01",
		Label:    "Équipements de protection individuelle",
		Domain:   DomainGoods,
		CPV:      []string{"18143000"},
		Keywords: []string{"casque", "gant", "harnais", "epi"},
	},
	{
		Code:           "S20-01",
		Label:          "Livraison et manutention sur chantier",
		Domain:         DomainServices,
		Keywords:       []string{"livraison", "manutention", "déchargement"},
		AllowMixedWith: []Code{"F10-01", "F10-02", "F20-01"},
	},
	{
		Code:     "S30-01",
		Label:    "Location de matériel",
		Domain:   DomainServices,
		CPV:      []string{"45510000"},
		Keywords: []string{"location", "nacelle", "échafaudage"},
	},
	{
		Code:     "C10-01",
		Label:    "Études techniques et diagnostics",
		Domain:   DomainConsulting,
		CPV:      []string{"71300000"},
		Keywords: []string{"étude", "diagnostic", "géotechnique"},
	},
	{
		Code:           "T10-01",
		Label:          "Transport de matériaux",
		Domain:         DomainTransport,
		CPV:            []string{"60100000"},
		Keywords:       []string{"transport", "benne", "camion"},
		AllowMixedWith: []Code{"F10-01", "F10-02"},
	},
	{
		Code:           "L10-01",
		Label:          "Stockage et logistique de chantier",
		Domain:         DomainLogistics,
		Keywords:       []string{"stockage", "conteneur", "entrepôt"},
		AllowMixedWith: []Code{"F30-01"},
	},
}

var defaultCatalog = mustCatalog(builtinFamilies)

func mustCatalog(families []Family) *Catalog {
	c, err := NewCatalog(families)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}
