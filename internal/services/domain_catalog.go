package services

// LegalDomain 法律领域条目
type LegalDomain struct {
	ID     string `json:"id"`
	NameAr string `json:"name_ar"`
	NameFr string `json:"name_fr"`
}

// legalDomains 覆盖的摩洛哥法律领域
var legalDomains = []LegalDomain{
	{ID: "penal_law", NameAr: "القانون الجنائي", NameFr: "Droit pénal"},
	{ID: "civil_law", NameAr: "القانون المدني", NameFr: "Droit civil"},
	{ID: "family_law", NameAr: "مدونة الأسرة", NameFr: "Droit de la famille"},
	{ID: "labor_law", NameAr: "مدونة الشغل", NameFr: "Droit du travail"},
	{ID: "commercial_law", NameAr: "القانون التجاري", NameFr: "Droit commercial"},
	{ID: "real_estate", NameAr: "القانون العقاري", NameFr: "Droit immobilier"},
	{ID: "tax_law", NameAr: "القانون الضريبي", NameFr: "Droit fiscal"},
	{ID: "consumer", NameAr: "حماية المستهلك", NameFr: "Protection du consommateur"},
}

// ListLegalDomains 返回支持的法律领域列表
func ListLegalDomains() []LegalDomain {
	domains := make([]LegalDomain, len(legalDomains))
	copy(domains, legalDomains)
	return domains
}
