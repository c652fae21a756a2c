package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "ar", DetectLanguage("ما هي عقوبة السرقة؟"))
	assert.Equal(t, "fr", DetectLanguage("Quelle est la peine pour le vol?"))
	// 混合文本按字符数多的一方判定
	assert.Equal(t, "ar", DetectLanguage("شنو هي المسطرة ديال divorce"))
	assert.Equal(t, "fr", DetectLanguage("La procédure de طلاق au Maroc"))
	// 无任何字母时默认fr
	assert.Equal(t, "fr", DetectLanguage("12345"))
}

func TestDetectDomain(t *testing.T) {
	assert.Equal(t, "penal_law", DetectDomain("ما هي عقوبة السرقة؟"))
	assert.Equal(t, "penal_law", DetectDomain("Quelle est la peine pour un crime?"))
	assert.Equal(t, "family_law", DetectDomain("كيفاش نطلب الطلاق؟"))
	assert.Equal(t, "labor_law", DetectDomain("licenciement abusif"))
	assert.Equal(t, "tax_law", DetectDomain("comment déclarer mes impôts"))
	assert.Equal(t, "", DetectDomain("bonjour"))
}

func TestDetectDomainFirstMatchWins(t *testing.T) {
	// 同时命中penal_law和family_law关键词时，按规则顺序penal_law优先
	assert.Equal(t, "penal_law", DetectDomain("جريمة أثناء الطلاق"))
	// civil_law排在real_estate之前
	assert.Equal(t, "civil_law", DetectDomain("contrat de bail"))
}

func TestDetectDomainCaseInsensitive(t *testing.T) {
	assert.Equal(t, "commercial_law", DetectDomain("CRÉATION DE SOCIÉTÉ"))
}
