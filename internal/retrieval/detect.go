package retrieval

import (
	"regexp"
	"strings"
)

var (
	arabicPattern = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
	latinPattern  = regexp.MustCompile(`[a-zA-ZÀ-ÿ]`)
)

// DetectLanguage 根据字符分布判断查询语言（ar或fr）
// 达里贾方言使用阿拉伯文字，同样归为ar
func DetectLanguage(text string) string {
	arabicCount := len(arabicPattern.FindAllString(text, -1))
	latinCount := len(latinPattern.FindAllString(text, -1))

	if arabicCount > 0 && latinCount > 0 {
		if arabicCount > latinCount {
			return "ar"
		}
		return "fr"
	}
	if arabicCount > 0 {
		return "ar"
	}
	return "fr"
}

// DomainRule 法律领域关键词规则
type DomainRule struct {
	Domain   string
	Keywords []string
}

// domainRules 按优先级排列，首个命中的领域生效
// 领域名必须与语料库legal_documents.domain取值一致
var domainRules = []DomainRule{
	{"penal_law", []string{"سرقة", "جريمة", "عقوبة", "قتل", "سجن", "vol", "crime", "peine", "prison", "pénal"}},
	{"civil_law", []string{"عقد", "التزام", "دين", "contrat", "obligation", "dette", "civil"}},
	{"family_law", []string{"طلاق", "زواج", "حضانة", "إرث", "مودونة", "divorce", "mariage", "garde", "héritage", "moudawana"}},
	{"labor_law", []string{"عمل", "أجير", "شغل", "travail", "salarié", "employé", "licenciement"}},
	{"commercial_law", []string{"شركة", "تجارة", "إفلاس", "société", "commerce", "faillite"}},
	{"real_estate", []string{"عقار", "ملكية", "كراء", "immobilier", "propriété", "bail"}},
	{"tax_law", []string{"ضريبة", "ضرائب", "impôt", "taxe", "fiscal"}},
	{"consumer", []string{"مستهلك", "ضمان", "consommateur", "garantie", "protection"}},
}

// DetectDomain 基于关键词匹配检测查询所属法律领域，未命中返回空串
func DetectDomain(query string) string {
	lowerQuery := strings.ToLower(query)

	for _, rule := range domainRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowerQuery, keyword) {
				return rule.Domain
			}
		}
	}

	return ""
}
